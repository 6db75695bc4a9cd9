package models

// TasteRecord is a visited place or experience filed under a category
type TasteRecord struct {
	ID        int64    `json:"id" db:"id"`
	UserID    int64    `json:"userId" db:"user_id"`
	PlaceName string   `json:"placeName" db:"place_name"`
	Category  string   `json:"category" db:"category"`
	Rating    int      `json:"rating" db:"rating"` // 1..5
	Memo      string   `json:"memo" db:"memo"`
	Tags      []string `json:"tags"`
	Lat       *float64 `json:"lat,omitempty" db:"lat"`
	Lng       *float64 `json:"lng,omitempty" db:"lng"`
	VisitedAt int64    `json:"visitedAt" db:"visited_at"` // epoch milliseconds
	CreatedAt string   `json:"createdAt,omitempty" db:"created_at"`
	UpdatedAt string   `json:"updatedAt,omitempty" db:"updated_at"`
}

// TasteRecordInput is the body of create and update requests
type TasteRecordInput struct {
	PlaceName string   `json:"placeName"`
	Category  string   `json:"category"`
	Rating    int      `json:"rating"`
	Memo      string   `json:"memo"`
	Tags      []string `json:"tags"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	VisitedAt int64    `json:"visitedAt"`
}

// TasteRecordFilter represents filter parameters for listing taste records
type TasteRecordFilter struct {
	UserID   int64  `form:"-"`
	Category string `form:"category"`
	Tag      string `form:"tag"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// TasteRecordsResponse represents a paginated response of taste records
type TasteRecordsResponse struct {
	Data       []TasteRecord `json:"data"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
}

// Category constants
const (
	CategoryFood     = "FOOD"
	CategoryCafe     = "CAFE"
	CategoryCulture  = "CULTURE"
	CategoryNature   = "NATURE"
	CategoryActivity = "ACTIVITY"
	CategoryShopping = "SHOPPING"
	CategoryEtc      = "ETC"
)

// Categories lists the accepted taste record categories
var Categories = []string{
	CategoryFood,
	CategoryCafe,
	CategoryCulture,
	CategoryNature,
	CategoryActivity,
	CategoryShopping,
	CategoryEtc,
}

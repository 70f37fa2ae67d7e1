package models

// EntryQuery is the find_entries request body
type EntryQuery struct {
	User      string   `json:"user" binding:"required"`
	KeyList   []string `json:"key_list" binding:"required"`
	StartTime float64  `json:"start_time"` // write_ts lower bound, inclusive
	EndTime   float64  `json:"end_time"`   // write_ts upper bound, inclusive
}

// EntryUpload is the body accepted when pushing entries for one user
type EntryUpload struct {
	User    string  `json:"user" binding:"required"`
	Entries []Entry `json:"entries" binding:"required"`
}

// TaskFilter represents filter parameters for listing evaluation tasks
type TaskFilter struct {
	SpecID   string `form:"specId"`
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

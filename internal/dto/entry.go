package dto

// ── 周记录模块 DTO ──

// EntryRangeQuery 周记录列表查询参数
type EntryRangeQuery struct {
	StartDate string `form:"startDate" binding:"required"`
	EndDate   string `form:"endDate"   binding:"required"`
}

// CreateEntryRequest 创建一周记录请求
type CreateEntryRequest struct {
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate"   binding:"required"`
}

// DayPatch 保存时提交的单日数据
// ID 仅供参考，服务端按 Date 匹配已有日记录
type DayPatch struct {
	ID        string          `json:"id,omitempty"`
	Date      string          `json:"date"      binding:"required"`
	Exercises map[string]bool `json:"exercises"`
}

// UpdateEntryRequest 保存周记录请求
// 客户端通常提交完整周记录；为 nil 的字段保持不变，Days 为 nil 时不修改日记录
type UpdateEntryRequest struct {
	CharityActs  *string    `json:"charityActs"`
	Comments     *string    `json:"comments"`
	Difficulties *string    `json:"difficulties"`
	Improvements *string    `json:"improvements"`
	Successes    *string    `json:"successes"`
	Days         []DayPatch `json:"days" binding:"omitempty,dive"`
}

// DayEntryResponse 日记录响应
type DayEntryResponse struct {
	ID        string          `json:"id"`
	Date      string          `json:"date"`
	Exercises map[string]bool `json:"exercises"`
}

// WeeklyEntryResponse 周记录响应，文本字段缺省为 ""
type WeeklyEntryResponse struct {
	ID           string             `json:"id"`
	UserID       string             `json:"userId"`
	StartDate    string             `json:"startDate"`
	EndDate      string             `json:"endDate"`
	CharityActs  string             `json:"charityActs"`
	Comments     string             `json:"comments"`
	Difficulties string             `json:"difficulties"`
	Improvements string             `json:"improvements"`
	Successes    string             `json:"successes"`
	Days         []DayEntryResponse `json:"days"`
}

// ExportQuery 导出参数
type ExportQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=xlsx ics"`
}

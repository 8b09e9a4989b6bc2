package core

// RatingRecord 是一次到店评价的原始记录，三个分数保持原始字符串，
// 由聚合器负责解析。
type RatingRecord struct {
	UserID  string
	PlaceID string
	General string
	Food    string
	Service string
}

// CuisineAssignment 描述餐厅与菜系的关联。同一餐厅的多条记录，
// 其出现顺序即菜系排名。
type CuisineAssignment struct {
	PlaceID string
	Cuisine string
}

// UserProfile 是用户画像行，只有 UserID 和 DisplayName 参与计算。
type UserProfile struct {
	UserID      string
	DisplayName string
	Extra       []string
}

// Place 是餐厅行，引擎不依赖它，仅供展示统计。
type Place struct {
	PlaceID string
	Name    string
	Extra   []string
}

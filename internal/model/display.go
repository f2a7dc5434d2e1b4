package model

// DisplayBundle 展示页需要的楼宇数据快照
type DisplayBundle struct {
	Tenant  TenantProfile `json:"tenant"`
	Notices []Notice      `json:"notices"`
	Images  []Image       `json:"images"`
	Style   StyleConfig   `json:"style"`
}

// NewsSlot 单个新闻源当前展示的条目，Item 为空表示暂无更新
type NewsSlot struct {
	Source string    `json:"source"`
	Item   *NewsItem `json:"item"`
	Index  int       `json:"index"`
	Count  int       `json:"count"`
}

// DisplayView 渲染层读取的展示页状态
type DisplayView struct {
	Tenant           *TenantProfile  `json:"tenant"`
	Style            StyleConfig     `json:"style"`
	Image            *Image          `json:"image"`
	Notice           *Notice         `json:"notice"`
	NoticePaused     bool            `json:"notice_paused"`
	NoticeFading     bool            `json:"notice_fading"`
	News             []NewsSlot      `json:"news"`
	Weather          *WeatherReport  `json:"weather"`
	Calendar         []CalendarEvent `json:"calendar"`
	SkipAutoRedirect bool            `json:"skip_auto_redirect"`
}

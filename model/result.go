package model

// RemoveResult 一次去背景处理的结果信息
type RemoveResult struct {
	ID          string   `json:"id"`
	MD5         string   `json:"md5"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Mode        string   `json:"mode"`
	Palette     []string `json:"palette"` // 背景色 hex，如 #ffffff
	EdgePixels  int      `json:"edge_pixels"`
	Transparent int      `json:"transparent_pixels"`
	DownloadURL string   `json:"download_url"`
	Timestamp   int64    `json:"timestamp"`
}

// PaletteResult 只做边框采样时的返回
type PaletteResult struct {
	Width   int             `json:"width"`
	Height  int             `json:"height"`
	Samples []PaletteSample `json:"samples"`
	Palette []string        `json:"palette"`
}

type PaletteSample struct {
	Color string `json:"color"`
	Count int    `json:"count"`
}

// Response 统一成功响应
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

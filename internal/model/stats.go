package model

// BlogStats はブログ全体の集計結果を表す。
type BlogStats struct {
	Blog         BlogTotals    `json:"blog"`
	Reading      ReadingTotals `json:"reading"`
	Distribution Distribution  `json:"distribution"`
	Tags         TagStats      `json:"tags"`
}

// BlogTotals は記事数・タグ数と公開日の範囲。
// 記事がない場合、EarliestPostとLatestPostはnullになる。
type BlogTotals struct {
	TotalPosts   int     `json:"totalPosts"`
	TotalTags    int     `json:"totalTags"`
	EarliestPost *string `json:"earliestPost"`
	LatestPost   *string `json:"latestPost"`
}

// ReadingTotals は読了時間（分）の合計と平均。
type ReadingTotals struct {
	TotalReadingMinutes int `json:"totalReadingMinutes"`
	AverageReadingTime  int `json:"averageReadingTime"`
}

// Distribution は公開年ごとの記事数。
type Distribution struct {
	PostsByYear map[string]int `json:"postsByYear"`
}

// TagStats はタグの総数と利用数上位のタグ。
type TagStats struct {
	Total   int        `json:"total"`
	TopTags []TagCount `json:"topTags"`
}

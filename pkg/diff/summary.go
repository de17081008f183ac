package diff

// Summary aggregates diff reports across an entire discovery run.
type Summary struct {
	TotalEndpoints     int          `json:"total_endpoints"`
	EndpointsWithDiffs int          `json:"endpoints_with_diffs"`
	TotalDiffs         int          `json:"total_diffs"`
	ErrorCount         int          `json:"total_errors"`
	WarningCount       int          `json:"total_warnings"`
	InfoCount          int          `json:"total_info"`
	CountsByKind       map[Kind]int `json:"diff_types"`
	HasBreakingChanges bool         `json:"has_breaking_changes"`
}

// Summarize folds per-endpoint reports into run totals.
func Summarize(reports []Report) Summary {
	s := Summary{
		TotalEndpoints: len(reports),
		CountsByKind:   make(map[Kind]int),
	}
	for _, r := range reports {
		if len(r.Diffs) > 0 {
			s.EndpointsWithDiffs++
		}
		for _, d := range r.Diffs {
			s.TotalDiffs++
			s.CountsByKind[d.Kind]++
			switch d.Severity {
			case SeverityError:
				s.ErrorCount++
				s.HasBreakingChanges = true
			case SeverityWarning:
				s.WarningCount++
			case SeverityInfo:
				s.InfoCount++
			}
		}
	}
	return s
}

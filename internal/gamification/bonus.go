package gamification

// XPPerPage is the XP earned for each page read.
const XPPerPage int64 = 1

// PageXP converts pages read into XP.
func PageXP(pages int) int64 {
	if pages <= 0 {
		return 0
	}
	return int64(pages) * XPPerPage
}

// CompletionBonus is the one-off XP for finishing a book of totalPages.
func CompletionBonus(totalPages int) int64 {
	switch {
	case totalPages < 150:
		return 50
	case totalPages <= 300:
		return 100
	default:
		return 150
	}
}

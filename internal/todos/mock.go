package todos

import "github.com/google/uuid"

// Mock returns a small fixed list for demos and previews.
func Mock() []Todo {
	return []Todo{
		{
			ID:          uuid.MustParse("DEADBEEF-DEAD-BEEF-DEAD-BEEDDEADBEEF"),
			Description: "Check Mail",
		},
		{
			ID:          uuid.MustParse("CAFEBEEF-CAFE-BEEF-CAFE-BEEFCAFEBEEF"),
			Description: "Buy Milk",
		},
		{
			ID:          uuid.MustParse("D00DCAFE-D00D-CAFE-D00D-CAFED00DCAFE"),
			Description: "Call Mom",
			IsComplete:  true,
		},
	}
}

package mapping

import (
	"strings"

	"bid_pricing/internal/domain/entities"
)

// ToBackendCategory maps a bid item label to its storage token.
// Labels outside the vocabulary map to "other". Regular and General share
// "general", which reads back as General; Regular rows never reach the store
// so only a record written elsewhere with that token is affected.
func ToBackendCategory(c entities.UICategory) entities.BackendCategory {
	switch c {
	case entities.CategoryGeneral, entities.CategoryRegular:
		return entities.BackendCategoryGeneral
	case entities.CategoryDemolition:
		return entities.BackendCategoryDemolition
	case entities.CategoryElectrical:
		return entities.BackendCategoryElectrical
	case entities.CategoryPlumbing:
		return entities.BackendCategoryPlumbing
	case entities.CategoryHVAC:
		return entities.BackendCategoryHVAC
	case entities.CategoryMEP:
		return entities.BackendCategoryMEP
	case entities.CategoryMechanical:
		return entities.BackendCategoryMechanical
	case entities.CategoryStorefront:
		return entities.BackendCategoryStorefront
	case entities.CategorySignage:
		return entities.BackendCategorySignage
	case entities.CategoryFireProtection:
		return entities.BackendCategoryFireProtection
	case entities.CategoryWall:
		return entities.BackendCategoryWall
	case entities.CategoryCeiling:
		return entities.BackendCategoryCeiling
	case entities.CategoryFloor:
		return entities.BackendCategoryFlooring
	case entities.CategoryDoor:
		return entities.BackendCategoryDoor
	case entities.CategoryWindow:
		return entities.BackendCategoryWindow
	case entities.CategoryFixture:
		return entities.BackendCategoryFixture
	case entities.CategoryCleanup:
		return entities.BackendCategoryCleanup
	case entities.CategoryStructural:
		return entities.BackendCategoryStructural
	case entities.CategoryInterior:
		return entities.BackendCategoryInterior
	case entities.CategoryExterior:
		return entities.BackendCategoryExterior
	}
	if parsed, ok := ParseUICategory(string(c)); ok && parsed != c {
		return ToBackendCategory(parsed)
	}
	return entities.BackendCategoryOther
}

// ToUICategory maps a storage token to a bid item label. Tokens are matched
// loosely ("Fire Protection", "fire-protection" and "fire_protection" are the
// same); anything unknown falls back to Demolition.
func ToUICategory(token entities.BackendCategory) entities.UICategory {
	switch normalizeToken(string(token)) {
	case "general", "regular":
		return entities.CategoryGeneral
	case "demolition":
		return entities.CategoryDemolition
	case "electrical":
		return entities.CategoryElectrical
	case "plumbing":
		return entities.CategoryPlumbing
	case "hvac":
		return entities.CategoryHVAC
	case "mep":
		return entities.CategoryMEP
	case "mechanical":
		return entities.CategoryMechanical
	case "storefront":
		return entities.CategoryStorefront
	case "signage":
		return entities.CategorySignage
	case "fire_protection":
		return entities.CategoryFireProtection
	case "wall", "walls":
		return entities.CategoryWall
	case "ceiling", "ceilings":
		return entities.CategoryCeiling
	case "flooring", "floor", "floors":
		return entities.CategoryFloor
	case "door", "doors":
		return entities.CategoryDoor
	case "window", "windows":
		return entities.CategoryWindow
	case "fixture", "fixtures":
		return entities.CategoryFixture
	case "cleanup", "clean_up":
		return entities.CategoryCleanup
	case "structural":
		return entities.CategoryStructural
	case "interior":
		return entities.CategoryInterior
	case "exterior":
		return entities.CategoryExterior
	}
	return entities.CategoryDemolition
}

// ParseUICategory matches a label case-insensitively.
func ParseUICategory(s string) (entities.UICategory, bool) {
	s = strings.TrimSpace(s)
	for _, c := range entities.UICategories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// IsDemolitionPipeline reports whether items of this category come from the
// demolition pipeline and therefore belong in the demolition item store.
// Regular is the category of manually added rows; unknown labels stay local.
func IsDemolitionPipeline(c entities.UICategory) bool {
	parsed, ok := ParseUICategory(string(c))
	return ok && parsed != entities.CategoryRegular
}

func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_", "/", "_").Replace(s)
	return s
}

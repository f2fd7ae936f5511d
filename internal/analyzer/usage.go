package analyzer

import (
	"github.com/ppiankov/profilespectre/internal/models"
)

// CheckUsage reports whether any cluster, cluster uid or cluster template
// references the profile. Missing or malformed lists count as empty.
func CheckUsage(detail *models.ProfileDetail) bool {
	if detail == nil {
		return false
	}
	return models.ListLen(detail.Usage.Clusters) > 0 ||
		models.ListLen(detail.Usage.ClusterUIDs) > 0 ||
		models.ListLen(detail.Usage.ClusterTemplates) > 0
}

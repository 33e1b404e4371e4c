package category

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"timeopt/internal/models"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		appName  string
		bundleID string
		want     models.Category
	}{
		{"known app", "Slack", "", models.CategoryCommunication},
		{"case insensitive", "ZOOM", "", models.CategoryMeeting},
		{"bundle id wins over name", "SomethingWeird", "us.zoom.xos", models.CategoryMeeting},
		{"bundle id unknown falls back to name", "Figma", "com.example.unknown", models.CategoryDesign},
		{"unmapped app is other", "Obscurotron 3000", "", models.CategoryOther},
		{"empty everything is other", "", "", models.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.appName, tt.bundleID))
		})
	}
}

func TestMembershipHelpers(t *testing.T) {
	assert.True(t, IsCommunication("Slack", ""))
	assert.True(t, IsCommunication("Zoom", ""), "meeting apps count as communication for interrupt purposes")
	assert.False(t, IsCommunication("GoLand", ""))

	assert.True(t, IsMeeting("Microsoft Teams", ""))
	assert.False(t, IsMeeting("Slack", ""))

	assert.True(t, IsDeepWork(models.CategoryCoding))
	assert.True(t, IsDeepWork(models.CategoryWriting))
	assert.True(t, IsDeepWork(models.CategoryDesign))
	assert.False(t, IsDeepWork(models.CategoryBrowsing))
	assert.False(t, IsDeepWork(models.CategoryOther))
}

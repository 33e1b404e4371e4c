// Package category maps application identities to coarse work
// categories. It is a pure lookup layer with no failure modes: an
// unmapped app resolves to Other, never an error.
package category

import (
	"strings"

	"timeopt/internal/models"
)

var appCategories = map[string]models.Category{
	// coding
	"code":               models.CategoryCoding,
	"visual studio code": models.CategoryCoding,
	"xcode":              models.CategoryCoding,
	"intellij idea":      models.CategoryCoding,
	"goland":             models.CategoryCoding,
	"pycharm":            models.CategoryCoding,
	"terminal":           models.CategoryCoding,
	"iterm2":             models.CategoryCoding,
	"vim":                models.CategoryCoding,
	"neovim":             models.CategoryCoding,
	"emacs":              models.CategoryCoding,
	"sublime text":       models.CategoryCoding,
	"zed":                models.CategoryCoding,

	// writing
	"obsidian":        models.CategoryWriting,
	"notion":          models.CategoryWriting,
	"pages":           models.CategoryWriting,
	"microsoft word":  models.CategoryWriting,
	"google docs":     models.CategoryWriting,
	"scrivener":       models.CategoryWriting,
	"ulysses":         models.CategoryWriting,
	"bear":            models.CategoryWriting,
	"typora":          models.CategoryWriting,

	// communication
	"slack":     models.CategoryCommunication,
	"mail":      models.CategoryCommunication,
	"outlook":   models.CategoryCommunication,
	"gmail":     models.CategoryCommunication,
	"messages":  models.CategoryCommunication,
	"telegram":  models.CategoryCommunication,
	"whatsapp":  models.CategoryCommunication,
	"discord":   models.CategoryCommunication,
	"signal":    models.CategoryCommunication,
	"messenger": models.CategoryCommunication,

	// meeting
	"zoom":            models.CategoryMeeting,
	"zoom.us":         models.CategoryMeeting,
	"microsoft teams": models.CategoryMeeting,
	"google meet":     models.CategoryMeeting,
	"webex":           models.CategoryMeeting,
	"facetime":        models.CategoryMeeting,

	// design
	"figma":       models.CategoryDesign,
	"sketch":      models.CategoryDesign,
	"photoshop":   models.CategoryDesign,
	"illustrator": models.CategoryDesign,
	"affinity":    models.CategoryDesign,
	"blender":     models.CategoryDesign,

	// browsing
	"safari":  models.CategoryBrowsing,
	"chrome":  models.CategoryBrowsing,
	"firefox": models.CategoryBrowsing,
	"arc":     models.CategoryBrowsing,
	"brave":   models.CategoryBrowsing,
	"edge":    models.CategoryBrowsing,

	// admin
	"calendar":    models.CategoryAdmin,
	"fantastical": models.CategoryAdmin,
	"reminders":   models.CategoryAdmin,
	"things":      models.CategoryAdmin,
	"quickbooks":  models.CategoryAdmin,
	"expensify":   models.CategoryAdmin,
	"finder":      models.CategoryAdmin,

	// entertainment
	"youtube":   models.CategoryEntertainment,
	"netflix":   models.CategoryEntertainment,
	"spotify":   models.CategoryEntertainment,
	"twitch":    models.CategoryEntertainment,
	"steam":     models.CategoryEntertainment,
	"tiktok":    models.CategoryEntertainment,
	"instagram": models.CategoryEntertainment,
	"twitter":   models.CategoryEntertainment,
	"reddit":    models.CategoryEntertainment,
}

var bundleCategories = map[string]models.Category{
	"com.microsoft.vscode":        models.CategoryCoding,
	"com.apple.dt.xcode":          models.CategoryCoding,
	"com.jetbrains.goland":        models.CategoryCoding,
	"com.jetbrains.intellij":      models.CategoryCoding,
	"com.googlecode.iterm2":       models.CategoryCoding,
	"com.apple.terminal":          models.CategoryCoding,
	"md.obsidian":                 models.CategoryWriting,
	"notion.id":                   models.CategoryWriting,
	"com.apple.iwork.pages":       models.CategoryWriting,
	"com.microsoft.word":          models.CategoryWriting,
	"com.tinyspeck.slackmacgap":   models.CategoryCommunication,
	"com.apple.mail":              models.CategoryCommunication,
	"com.microsoft.outlook":       models.CategoryCommunication,
	"ru.keepcoder.telegram":       models.CategoryCommunication,
	"net.whatsapp.whatsapp":       models.CategoryCommunication,
	"com.hnc.discord":             models.CategoryCommunication,
	"us.zoom.xos":                 models.CategoryMeeting,
	"com.microsoft.teams2":        models.CategoryMeeting,
	"com.cisco.webexmeetingsapp":  models.CategoryMeeting,
	"com.apple.facetime":          models.CategoryMeeting,
	"com.figma.desktop":           models.CategoryDesign,
	"com.bohemiancoding.sketch3":  models.CategoryDesign,
	"com.apple.safari":            models.CategoryBrowsing,
	"com.google.chrome":           models.CategoryBrowsing,
	"org.mozilla.firefox":         models.CategoryBrowsing,
	"company.thebrowser.browser":  models.CategoryBrowsing,
	"com.apple.ical":              models.CategoryAdmin,
	"com.flexibits.fantastical2":  models.CategoryAdmin,
	"com.apple.finder":            models.CategoryAdmin,
	"com.spotify.client":          models.CategoryEntertainment,
	"com.valvesoftware.steam":     models.CategoryEntertainment,
	"com.google.ios.youtube":      models.CategoryEntertainment,
}

// deepWorkCategories are the high-value categories eligible for
// deep-work and flow-state tracking.
var deepWorkCategories = map[models.Category]bool{
	models.CategoryCoding:  true,
	models.CategoryWriting: true,
	models.CategoryDesign:  true,
}

// Resolve maps an app to its work category. A missing bundle id only
// degrades matching; an unmapped app is Other, not an error.
func Resolve(appName, bundleID string) models.Category {
	if bundleID != "" {
		if c, ok := bundleCategories[strings.ToLower(bundleID)]; ok {
			return c
		}
	}
	if c, ok := appCategories[strings.ToLower(appName)]; ok {
		return c
	}
	return models.CategoryOther
}

// IsCommunication reports whether the app resolves to a communication
// or meeting category, the set used by the interrupt detector.
func IsCommunication(appName, bundleID string) bool {
	c := Resolve(appName, bundleID)
	return c == models.CategoryCommunication || c == models.CategoryMeeting
}

// IsMeeting reports whether the app is a recognized meeting app.
func IsMeeting(appName, bundleID string) bool {
	return Resolve(appName, bundleID) == models.CategoryMeeting
}

// IsDeepWork reports whether the category counts toward deep-work
// streaks.
func IsDeepWork(c models.Category) bool {
	return deepWorkCategories[c]
}

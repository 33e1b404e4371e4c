package models

// Category is the coarse work category an application resolves to.
type Category string

const (
	CategoryCoding        Category = "coding"
	CategoryWriting       Category = "writing"
	CategoryCommunication Category = "communication"
	CategoryMeeting       Category = "meeting"
	CategoryDesign        Category = "design"
	CategoryBrowsing      Category = "browsing"
	CategoryAdmin         Category = "admin"
	CategoryEntertainment Category = "entertainment"
	CategoryOther         Category = "other"
)

// AllCategories lists every category, used to validate that lookup
// tables cover the full pair space at startup.
var AllCategories = []Category{
	CategoryCoding,
	CategoryWriting,
	CategoryCommunication,
	CategoryMeeting,
	CategoryDesign,
	CategoryBrowsing,
	CategoryAdmin,
	CategoryEntertainment,
	CategoryOther,
}

// DealCategory is one of the four DEAL behavioral buckets.
type DealCategory string

const (
	DealDelegate  DealCategory = "delegate"
	DealEliminate DealCategory = "eliminate"
	DealAutomate  DealCategory = "automate"
	DealLeverage  DealCategory = "leverage"
)

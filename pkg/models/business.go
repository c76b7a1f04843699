package models

// BusinessVertical is the industry a business profile belongs to
type BusinessVertical string

const (
	VerticalUndefined    BusinessVertical = "UNDEFINED"
	VerticalOther        BusinessVertical = "OTHER"
	VerticalAuto         BusinessVertical = "AUTO"
	VerticalBeauty       BusinessVertical = "BEAUTY"
	VerticalApparel      BusinessVertical = "APPAREL"
	VerticalEdu          BusinessVertical = "EDU"
	VerticalEntertain    BusinessVertical = "ENTERTAIN"
	VerticalEventPlan    BusinessVertical = "EVENT_PLAN"
	VerticalFinance      BusinessVertical = "FINANCE"
	VerticalGrocery      BusinessVertical = "GROCERY"
	VerticalGovt         BusinessVertical = "GOVT"
	VerticalHotel        BusinessVertical = "HOTEL"
	VerticalHealth       BusinessVertical = "HEALTH"
	VerticalNonprofit    BusinessVertical = "NONPROFIT"
	VerticalProfServices BusinessVertical = "PROF_SERVICES"
	VerticalRetail       BusinessVertical = "RETAIL"
	VerticalTravel       BusinessVertical = "TRAVEL"
	VerticalRestaurant   BusinessVertical = "RESTAURANT"
	VerticalNotABiz      BusinessVertical = "NOT_A_BIZ"
)

// BusinessProfile holds the editable fields of a WhatsApp business profile.
// Empty fields are left untouched by the provider.
type BusinessProfile struct {
	About       string           `json:"about,omitempty"`
	Address     string           `json:"address,omitempty"`
	Description string           `json:"description,omitempty"`
	Email       string           `json:"email,omitempty"`
	Vertical    BusinessVertical `json:"vertical"`
	Websites    []string         `json:"websites,omitempty"`
}

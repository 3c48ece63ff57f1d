package services

import (
	"errors"
	"fmt"

	domain "github.com/familyjustice/orders-api/internal/domain"
)

// ErrUnknownOrderType signals an order type with no template mapping. The
// lifecycle engine treats this as fatal for that single order, not for the
// whole request.
var ErrUnknownOrderType = errors.New("templates: unknown order type")

// OrderTemplate names the render templates and output filenames for one order
// type in each language.
type OrderTemplate struct {
	EnglishTemplate string
	EnglishFileName string
	WelshTemplate   string
	WelshFileName   string
}

var orderTemplates = map[domain.OrderType]OrderTemplate{
	domain.OrderTypeBlankOrderDirections: {
		EnglishTemplate: "FL-ORD-C21-blank-order-directions-eng",
		EnglishFileName: "Blank_Order_Directions_C21.pdf",
		WelshTemplate:   "FL-ORD-C21-blank-order-directions-wel",
		WelshFileName:   "Welsh_Blank_Order_Directions_C21.pdf",
	},
	domain.OrderTypeChildArrangements: {
		EnglishTemplate: "FL-ORD-C43-child-arrangements-eng",
		EnglishFileName: "ChildArrangements_Specific_Prohibited_Steps_C43.pdf",
		WelshTemplate:   "FL-ORD-C43-child-arrangements-wel",
		WelshFileName:   "Welsh_ChildArrangements_Specific_Prohibited_Steps_C43.pdf",
	},
	domain.OrderTypeParentalResponsibility: {
		EnglishTemplate: "FL-ORD-C45A-parental-responsibility-eng",
		EnglishFileName: "ParentalResponsibility_C45A.pdf",
		WelshTemplate:   "FL-ORD-C45A-parental-responsibility-wel",
		WelshFileName:   "Welsh_ParentalResponsibility_C45A.pdf",
	},
	domain.OrderTypeSpecialGuardianship: {
		EnglishTemplate: "FL-ORD-C43A-special-guardianship-eng",
		EnglishFileName: "SpecialGuardianship_C43A.pdf",
		WelshTemplate:   "FL-ORD-C43A-special-guardianship-wel",
		WelshFileName:   "Welsh_SpecialGuardianship_C43A.pdf",
	},
	domain.OrderTypeAppointmentOfGuardian: {
		EnglishTemplate: "FL-ORD-C47A-appointment-of-guardian-eng",
		EnglishFileName: "AppointmentOfGuardian_C47A.pdf",
		WelshTemplate:   "FL-ORD-C47A-appointment-of-guardian-wel",
		WelshFileName:   "Welsh_AppointmentOfGuardian_C47A.pdf",
	},
	domain.OrderTypeNonMolestation: {
		EnglishTemplate: "FL-ORD-FL404A-non-molestation-eng",
		EnglishFileName: "NonMolestation_FL404A.pdf",
		WelshTemplate:   "FL-ORD-FL404A-non-molestation-wel",
		WelshFileName:   "Welsh_NonMolestation_FL404A.pdf",
	},
	domain.OrderTypeOccupation: {
		EnglishTemplate: "FL-ORD-FL404-occupation-eng",
		EnglishFileName: "Occupation_FL404.pdf",
		WelshTemplate:   "FL-ORD-FL404-occupation-wel",
		WelshFileName:   "Welsh_Occupation_FL404.pdf",
	},
	domain.OrderTypePowerOfArrest: {
		EnglishTemplate: "FL-ORD-FL406-power-of-arrest-eng",
		EnglishFileName: "PowerOfArrest_FL406.pdf",
		WelshTemplate:   "FL-ORD-FL406-power-of-arrest-wel",
		WelshFileName:   "Welsh_PowerOfArrest_FL406.pdf",
	},
	domain.OrderTypeGeneralFormOfUndertaking: {
		EnglishTemplate: "FL-ORD-N117-general-form-undertaking-eng",
		EnglishFileName: "GeneralFormOfUndertaking_N117.pdf",
		WelshTemplate:   "FL-ORD-N117-general-form-undertaking-wel",
		WelshFileName:   "Welsh_GeneralFormOfUndertaking_N117.pdf",
	},
	domain.OrderTypeNoticeOfProceedings: {
		EnglishTemplate: "FL-ORD-C6-notice-of-proceedings-eng",
		EnglishFileName: "NoticeOfProceedings_C6.pdf",
		WelshTemplate:   "FL-ORD-C6-notice-of-proceedings-wel",
		WelshFileName:   "Welsh_NoticeOfProceedings_C6.pdf",
	},
}

// ResolveTemplates looks up the template mapping for an order type. Pure
// lookup, no side effects.
func ResolveTemplates(orderType domain.OrderType) (OrderTemplate, error) {
	tpl, ok := orderTemplates[orderType]
	if !ok {
		return OrderTemplate{}, fmt.Errorf("%w: %q", ErrUnknownOrderType, orderType)
	}
	return tpl, nil
}

package domain

import (
	"time"
)

// YesNo mirrors the two-state flags captured on case screens.
type YesNo string

const (
	// Yes is the affirmative flag value.
	Yes YesNo = "Yes"
	// No is the negative flag value.
	No YesNo = "No"
)

// OrderType identifies the kind of legal order being drafted or issued.
type OrderType string

const (
	// OrderTypeBlankOrderDirections is a blank order or directions (form C21).
	OrderTypeBlankOrderDirections OrderType = "blankOrderOrDirections"
	// OrderTypeChildArrangements covers child arrangements, specific issue and prohibited steps orders (form C43).
	OrderTypeChildArrangements OrderType = "childArrangementsSpecificProhibitedOrder"
	// OrderTypeParentalResponsibility grants parental responsibility (form C45A).
	OrderTypeParentalResponsibility OrderType = "parentalResponsibility"
	// OrderTypeSpecialGuardianship appoints a special guardian (form C43A).
	OrderTypeSpecialGuardianship OrderType = "specialGuardianShip"
	// OrderTypeAppointmentOfGuardian appoints a guardian (form C47A).
	OrderTypeAppointmentOfGuardian OrderType = "appointmentOfGuardian"
	// OrderTypeNonMolestation is a non-molestation injunction (form FL404A).
	OrderTypeNonMolestation OrderType = "nonMolestation"
	// OrderTypeOccupation regulates occupation of the family home (form FL404).
	OrderTypeOccupation OrderType = "occupation"
	// OrderTypePowerOfArrest attaches a power of arrest to an injunction (form FL406).
	OrderTypePowerOfArrest OrderType = "powerOfArrest"
	// OrderTypeNoticeOfProceedings notifies parties and non-parties of proceedings (forms C6/C6A).
	OrderTypeNoticeOfProceedings OrderType = "noticeOfProceedingsNonParties"
	// OrderTypeGeneralFormOfUndertaking is the general form of undertaking (form N117).
	OrderTypeGeneralFormOfUndertaking OrderType = "generalForm"
)

// DraftStatus tracks how far a draft order has progressed through review.
type DraftStatus string

const (
	// DraftStatusDraft marks a draft awaiting review.
	DraftStatusDraft DraftStatus = "Draft"
	// DraftStatusJudgeReviewed marks a draft a judge has already reviewed.
	DraftStatusJudgeReviewed DraftStatus = "Judge reviewed"
)

// UserRole identifies the caller mutating the order stores.
type UserRole string

const (
	// RoleJudge covers judicial users; their corrections always loop back through draft review.
	RoleJudge UserRole = "Judge"
	// RoleCourtAdmin covers HMCTS admin staff.
	RoleCourtAdmin UserRole = "CourtAdmin"
	// RoleSolicitor covers professional users.
	RoleSolicitor UserRole = "Solicitor"
)

// ServeDecision captures what the user chose to do with a finalised order.
type ServeDecision string

const (
	// ServeDecisionServeNow sends the order to the parties immediately.
	ServeDecisionServeNow ServeDecision = "serveNow"
	// ServeDecisionFinaliseServeLater finalises the order but defers service.
	ServeDecisionFinaliseServeLater ServeDecision = "finaliseAndServeLater"
	// ServeDecisionJudgeReview routes the order back to a judge before service.
	ServeDecisionJudgeReview ServeDecision = "askJudgeToReview"
)

// OrderRecipient enumerates the parties an issued order can be addressed to.
type OrderRecipient string

const (
	// RecipientApplicant addresses the applicant or their solicitor.
	RecipientApplicant OrderRecipient = "applicantOrApplicantSolicitor"
	// RecipientRespondent addresses the respondent or their solicitor.
	RecipientRespondent OrderRecipient = "respondentOrRespondentSolicitor"
)

// Document references a generated artefact held by the file-storage service.
type Document struct {
	URL       string `firestore:"documentUrl"`
	BinaryURL string `firestore:"documentBinaryUrl"`
	FileName  string `firestore:"documentFileName"`
	Hash      string `firestore:"documentHash,omitempty"`
}

// Party is a case participant; Label resolves to the solicitor when the party
// is represented, otherwise to the litigant-in-person name.
type Party struct {
	Name          string   `firestore:"name"`
	SolicitorName string   `firestore:"solicitorName,omitempty"`
	Represented   bool     `firestore:"represented"`
	Address       *Address `firestore:"address,omitempty"`
}

// Label returns the serving label for the party.
func (p Party) Label() string {
	if p.Represented && p.SolicitorName != "" {
		return p.SolicitorName + " (Solicitor)"
	}
	return p.Name
}

// Address is a postal address attached to a party or property.
type Address struct {
	Line1    string `firestore:"line1"`
	Line2    string `firestore:"line2,omitempty"`
	Town     string `firestore:"town,omitempty"`
	Postcode string `firestore:"postcode,omitempty"`
}

// HearingParticulars capture the hearing details shared by most order types.
type HearingParticulars struct {
	CourtName    string     `firestore:"courtName,omitempty"`
	VenueID      string     `firestore:"venueId,omitempty"`
	HearingDate  *time.Time `firestore:"hearingDate,omitempty"`
	JudgeTitle   string     `firestore:"judgeTitle,omitempty"`
	JudgeName    string     `firestore:"judgeName,omitempty"`
	TimeEstimate string     `firestore:"timeEstimate,omitempty"`
}

// ChildArrangementsFields hold the fields specific to C43 orders.
type ChildArrangementsFields struct {
	SubType       []string `firestore:"subType,omitempty"` // liveWith, spendTime, specificIssue, prohibitedSteps
	ChildrenNames []string `firestore:"childrenNames,omitempty"`
	Conditions    string   `firestore:"conditions,omitempty"`
}

// UndertakingFields hold the fields specific to N117 undertakings.
type UndertakingFields struct {
	PartyGiving         string     `firestore:"partyGiving,omitempty"`
	Terms               string     `firestore:"terms,omitempty"`
	ExpiryDate          *time.Time `firestore:"expiryDate,omitempty"`
	PenalNoticeAttached YesNo      `firestore:"penalNoticeAttached,omitempty"`
}

// GuardianFields hold the fields specific to guardianship orders.
type GuardianFields struct {
	GuardianNames []string `firestore:"guardianNames,omitempty"`
	Relationship  string   `firestore:"relationship,omitempty"`
}

// InjunctionFields hold the fields shared by FL404/FL404A/FL406 orders.
type InjunctionFields struct {
	RespondentName   string     `firestore:"respondentName,omitempty"`
	ProtectedParties []string   `firestore:"protectedParties,omitempty"`
	ProhibitedActs   string     `firestore:"prohibitedActs,omitempty"`
	PropertyAddress  *Address   `firestore:"propertyAddress,omitempty"`
	ExpiryDate       *time.Time `firestore:"expiryDate,omitempty"`
	PowerOfArrest    YesNo      `firestore:"powerOfArrest,omitempty"`
}

// BlankOrderFields hold the free-form directions of a C21 order.
type BlankOrderFields struct {
	Directions string `firestore:"directions,omitempty"`
}

// OrderPayload carries the order-type-specific fields. At most one variant is
// populated, matching the record's order type; the rest stay nil.
type OrderPayload struct {
	ChildArrangements *ChildArrangementsFields `firestore:"childArrangements,omitempty"`
	Undertaking       *UndertakingFields       `firestore:"undertaking,omitempty"`
	Guardian          *GuardianFields          `firestore:"guardian,omitempty"`
	Injunction        *InjunctionFields        `firestore:"injunction,omitempty"`
	BlankOrder        *BlankOrderFields        `firestore:"blankOrder,omitempty"`
}

// OrderFields combine the shared hearing particulars with the per-type payload.
type OrderFields struct {
	Hearing *HearingParticulars `firestore:"hearing,omitempty"`
	Payload OrderPayload        `firestore:"payload,omitempty"`
}

// DraftOtherDetails is the structured metadata block on a draft order.
type DraftOtherDetails struct {
	CreatedBy   string      `firestore:"createdBy"`
	DateCreated time.Time   `firestore:"dateCreated"`
	Status      DraftStatus `firestore:"status"`
}

// DraftOrder is an order authored but not yet legally issued. It is replaced
// wholesale on each re-review and removed the moment it is promoted.
type DraftOrder struct {
	ID             string            `firestore:"id"`
	OrderType      OrderType         `firestore:"orderType"`
	OrderTypeLabel string            `firestore:"orderTypeLabel"`
	Document       *Document         `firestore:"orderDocument,omitempty"`
	DocumentWelsh  *Document         `firestore:"orderDocumentWelsh,omitempty"`
	JudgeNotes     string            `firestore:"judgeNotes,omitempty"`
	OtherDetails   DraftOtherDetails `firestore:"otherDetails"`
	Fields         OrderFields       `firestore:"fields,omitempty"`
}

// OrderOtherDetails is the structured metadata block on an issued order.
type OrderOtherDetails struct {
	CreatedBy        string `firestore:"createdBy"`
	OrderCreatedDate string `firestore:"orderCreatedDate"`
	OrderMadeDate    string `firestore:"orderMadeDate,omitempty"`
	OrderRecipients  string `firestore:"orderRecipients,omitempty"`
}

// OrderDetails is a legally issued order. It is never mutated after creation;
// the amendment path files a new OrderDetails that supersedes it while the old
// entry stays in the collection.
type OrderDetails struct {
	ID               string            `firestore:"id"`
	OrderType        OrderType         `firestore:"orderType"`
	OrderTypeLabel   string            `firestore:"orderTypeLabel"`
	Document         *Document         `firestore:"orderDocument,omitempty"`
	DocumentWelsh    *Document         `firestore:"orderDocumentWelsh,omitempty"`
	AdminNotes       string            `firestore:"adminNotes,omitempty"`
	JudgeNotes       string            `firestore:"judgeNotes,omitempty"`
	DateCreated      time.Time         `firestore:"dateCreated"`
	OrderAmendedDate *time.Time        `firestore:"orderAmendedDate,omitempty"`
	OtherDetails     OrderOtherDetails `firestore:"otherDetails"`
}

// ManageOrdersState is the in-memory field state of an order-editing session.
// Only the fields relevant to the order type being drafted are populated.
type ManageOrdersState struct {
	OrderType         OrderType        `firestore:"orderType,omitempty"`
	OrderTypeLabel    string           `firestore:"orderTypeLabel,omitempty"`
	JudgeOrMagistrate string           `firestore:"judgeOrMagistrate,omitempty"`
	JudgeNotes        string           `firestore:"judgeNotes,omitempty"`
	AdminNotes        string           `firestore:"adminNotes,omitempty"`
	OrderMadeDate     *time.Time       `firestore:"orderMadeDate,omitempty"`
	ServeOrderNow     YesNo            `firestore:"serveOrderNow,omitempty"`
	ServeDecision     ServeDecision    `firestore:"serveDecision,omitempty"`
	Recipients        []OrderRecipient `firestore:"recipients,omitempty"`
	PreviewDocument   *Document        `firestore:"previewDocument,omitempty"`
	PreviewDocumentCy *Document        `firestore:"previewDocumentCy,omitempty"`
	AmendOrderList    string           `firestore:"amendOrderList,omitempty"` // selection UUID into the final store
	DraftOrderList    string           `firestore:"draftOrderList,omitempty"` // selection UUID into the draft store
	Fields            OrderFields      `firestore:"fields,omitempty"`
}

// CaseData is the aggregate owning both order stores. The lifecycle engine
// never owns these records; it reads, transforms and writes through the
// collections it is handed and returns them for merging back.
type CaseData struct {
	ID                 string             `firestore:"id"`
	Applicants         []Party            `firestore:"applicants,omitempty"`
	Respondents        []Party            `firestore:"respondents,omitempty"`
	WelshNeeded        YesNo              `firestore:"welshNeeded,omitempty"`
	LanguagePreference LanguagePreference `firestore:"languagePreference,omitempty"`
	ManageOrders       ManageOrdersState  `firestore:"manageOrders,omitempty"`
	DraftOrders        DraftOrderStore    `firestore:"draftOrderCollection,omitempty"`
	FinalOrders        FinalOrderStore    `firestore:"orderCollection,omitempty"`
}

// OrdersUpdate carries the fields written back to a case after a lifecycle
// operation. The update replaces both stores wholesale.
type OrdersUpdate struct {
	DraftOrders  DraftOrderStore
	FinalOrders  FinalOrderStore
	ManageOrders ManageOrdersState
}

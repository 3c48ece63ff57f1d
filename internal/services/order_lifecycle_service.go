package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	domain "github.com/familyjustice/orders-api/internal/domain"
)

const (
	orderEventDrafted = "order.drafted"
	orderEventIssued  = "order.issued"
	orderEventAmended = "order.amended"

	orderIDPrefix = "ord_"
	draftIDPrefix = "dro_"

	amendedFilenamePrefix = "amended_"
	amendedContentType    = "application/pdf"

	// UK court correspondence style, e.g. "2 June 2025".
	courtDateLayout = "2 January 2006"
)

var (
	// ErrOrderInvalidInput signals the caller provided invalid data.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderNotFound indicates the selection reference does not resolve to an order.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrStamping indicates the amendment-stamping service failed; the whole amendment aborts.
	ErrStamping = errors.New("order: stamping failed")
	// ErrDocumentStorage indicates the file-storage service rejected the stamped binary.
	ErrDocumentStorage = errors.New("order: document storage failed")
)

// OrderLifecycleDeps bundles collaborators required to construct the lifecycle service.
type OrderLifecycleDeps struct {
	Renderer    DocumentRenderer
	Stamper     AmendmentStamper
	Files       FileStore
	Clock       func() time.Time
	IDGenerator func() string
	Events      OrderEventPublisher
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type orderLifecycleService struct {
	renderer DocumentRenderer
	stamper  AmendmentStamper
	files    FileStore
	clock    func() time.Time
	newID    func() string
	events   OrderEventPublisher
	logger   func(context.Context, string, map[string]any)
	sanitise *bluemonday.Policy
}

// NewOrderLifecycleService wires dependencies into a concrete OrderLifecycleService.
func NewOrderLifecycleService(deps OrderLifecycleDeps) (OrderLifecycleService, error) {
	if deps.Renderer == nil {
		return nil, errors.New("order lifecycle service: renderer is required")
	}
	if deps.Stamper == nil {
		return nil, errors.New("order lifecycle service: stamper is required")
	}
	if deps.Files == nil {
		return nil, errors.New("order lifecycle service: file store is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return ulid.Make().String()
		}
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &orderLifecycleService{
		renderer: deps.Renderer,
		stamper:  deps.Stamper,
		files:    deps.Files,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:    idGen,
		events:   deps.Events,
		logger:   logger,
		sanitise: bluemonday.StrictPolicy(),
	}, nil
}

// BuildDraft assembles a DraftOrder from the current edit session and inserts
// it into the draft store. Only the fields relevant to the order type being
// drafted are populated; the rest of the record stays empty since the same
// shape is reused across all order types.
func (s *orderLifecycleService) BuildDraft(ctx context.Context, cmd BuildDraftCommand) (OrderStores, error) {
	state := cmd.Case.ManageOrders
	if strings.TrimSpace(string(state.OrderType)) == "" {
		return OrderStores{}, fmt.Errorf("%w: order type is required", ErrOrderInvalidInput)
	}
	if _, err := ResolveTemplates(state.OrderType); err != nil {
		return OrderStores{}, err
	}

	langs := CaseLanguages(cmd.Case)
	now := s.clock()

	draft := DraftOrder{
		ID:             draftIDPrefix + s.newID(),
		OrderType:      state.OrderType,
		OrderTypeLabel: state.OrderTypeLabel,
		JudgeNotes:     s.sanitiseText(state.JudgeNotes),
		OtherDetails: domain.DraftOtherDetails{
			CreatedBy:   state.JudgeOrMagistrate,
			DateCreated: now,
			Status:      domain.DraftStatusDraft,
		},
		Fields: state.Fields,
	}

	if langs.English {
		draft.Document = state.PreviewDocument
	}
	if langs.Welsh {
		draft.DocumentWelsh = state.PreviewDocumentCy
	}

	stores := OrderStores{
		DraftOrders: cmd.Case.DraftOrders.Insert(draft),
		FinalOrders: cmd.Case.FinalOrders.Sorted(),
	}

	s.publishEvent(ctx, OrderEvent{
		Type:       orderEventDrafted,
		CaseID:     cmd.Case.ID,
		OrderID:    draft.ID,
		OrderType:  draft.OrderType,
		ActorName:  state.JudgeOrMagistrate,
		OccurredAt: now,
	})

	return stores, nil
}

// PromoteDraftToFinal converts the draft matching the previewed document into
// an issued order. Identity is established by filename equality with the
// preview document, not by record identifier; collisions between unrelated
// drafts are logged but the first match wins. When nothing matches the
// operation leaves both stores untouched and reports no error.
func (s *orderLifecycleService) PromoteDraftToFinal(ctx context.Context, cmd PromoteDraftCommand) (OrderStores, error) {
	state := cmd.Case.ManageOrders
	drafts := cmd.Case.DraftOrders
	finals := cmd.Case.FinalOrders

	unchanged := OrderStores{DraftOrders: drafts.Sorted(), FinalOrders: finals.Sorted()}

	previewName := previewFilename(state)
	if previewName == "" {
		s.logger(ctx, "order.promote.skipped", map[string]any{
			"caseId": cmd.Case.ID,
			"reason": "no preview document",
		})
		return unchanged, nil
	}

	draft, index, ok := drafts.FindByDocumentFilename(previewName)
	if !ok {
		s.logger(ctx, "order.promote.skipped", map[string]any{
			"caseId":   cmd.Case.ID,
			"filename": previewName,
			"reason":   "no draft matches preview filename",
		})
		return unchanged, nil
	}

	if count := drafts.CountByDocumentFilename(previewName); count > 1 {
		s.logger(ctx, "order.promote.filename_collision", map[string]any{
			"caseId":   cmd.Case.ID,
			"filename": previewName,
			"drafts":   count,
		})
	}

	tpl, err := ResolveTemplates(draft.OrderType)
	if err != nil {
		return OrderStores{}, err
	}

	// Language needs can change between draft creation and promotion, so the
	// requirement is evaluated against the case as it stands now.
	langs := CaseLanguages(cmd.Case)
	now := s.clock()
	data := s.renderData(cmd.Case, draft.Fields)

	var englishDoc, welshDoc *Document
	if langs.English {
		englishDoc = s.renderDocument(ctx, cmd.Case.ID, tpl.EnglishTemplate, documentFilename(draft.Document, tpl.EnglishFileName), data)
	}
	if langs.Welsh {
		welshDoc = s.renderDocument(ctx, cmd.Case.ID, tpl.WelshTemplate, documentFilename(draft.DocumentWelsh, tpl.WelshFileName), data)
	}

	judgeNotes := draft.JudgeNotes
	if judgeNotes == "" {
		judgeNotes = s.sanitiseText(state.JudgeNotes)
	}

	order := OrderDetails{
		ID:             orderIDPrefix + s.newID(),
		OrderType:      draft.OrderType,
		OrderTypeLabel: draft.OrderTypeLabel,
		Document:       englishDoc,
		DocumentWelsh:  welshDoc,
		AdminNotes:     s.sanitiseText(state.AdminNotes),
		JudgeNotes:     judgeNotes,
		DateCreated:    draft.OtherDetails.DateCreated,
		OtherDetails: domain.OrderOtherDetails{
			CreatedBy:        draft.OtherDetails.CreatedBy,
			OrderCreatedDate: draft.OtherDetails.DateCreated.Format(courtDateLayout),
			OrderMadeDate:    formatCourtDate(state.OrderMadeDate),
			OrderRecipients:  recipientsLine(cmd.Case, state.Recipients),
		},
	}

	stores := OrderStores{
		DraftOrders: drafts.RemoveAt(index),
		FinalOrders: finals.Insert(order),
	}

	s.publishEvent(ctx, OrderEvent{
		Type:       orderEventIssued,
		CaseID:     cmd.Case.ID,
		OrderID:    order.ID,
		OrderType:  order.OrderType,
		ActorName:  order.OtherDetails.CreatedBy,
		OccurredAt: now,
		Metadata:   map[string]string{"promotedFrom": draft.ID},
	})

	return stores, nil
}

// FinaliseOrder issues the in-session order directly, without the draft stage.
func (s *orderLifecycleService) FinaliseOrder(ctx context.Context, cmd FinaliseOrderCommand) (OrderStores, error) {
	state := cmd.Case.ManageOrders
	if strings.TrimSpace(string(state.OrderType)) == "" {
		return OrderStores{}, fmt.Errorf("%w: order type is required", ErrOrderInvalidInput)
	}

	tpl, err := ResolveTemplates(state.OrderType)
	if err != nil {
		return OrderStores{}, err
	}

	langs := CaseLanguages(cmd.Case)
	now := s.clock()
	data := s.renderData(cmd.Case, state.Fields)

	var englishDoc, welshDoc *Document
	if langs.English {
		englishDoc = s.renderDocument(ctx, cmd.Case.ID, tpl.EnglishTemplate, documentFilename(state.PreviewDocument, tpl.EnglishFileName), data)
	}
	if langs.Welsh {
		welshDoc = s.renderDocument(ctx, cmd.Case.ID, tpl.WelshTemplate, documentFilename(state.PreviewDocumentCy, tpl.WelshFileName), data)
	}

	order := OrderDetails{
		ID:             orderIDPrefix + s.newID(),
		OrderType:      state.OrderType,
		OrderTypeLabel: state.OrderTypeLabel,
		Document:       englishDoc,
		DocumentWelsh:  welshDoc,
		AdminNotes:     s.sanitiseText(state.AdminNotes),
		JudgeNotes:     s.sanitiseText(state.JudgeNotes),
		DateCreated:    now,
		OtherDetails: domain.OrderOtherDetails{
			CreatedBy:        state.JudgeOrMagistrate,
			OrderCreatedDate: now.Format(courtDateLayout),
			OrderMadeDate:    formatCourtDate(state.OrderMadeDate),
			OrderRecipients:  recipientsLine(cmd.Case, state.Recipients),
		},
	}

	stores := OrderStores{
		DraftOrders: cmd.Case.DraftOrders.Sorted(),
		FinalOrders: cmd.Case.FinalOrders.Insert(order),
	}

	s.publishEvent(ctx, OrderEvent{
		Type:       orderEventIssued,
		CaseID:     cmd.Case.ID,
		OrderID:    order.ID,
		OrderType:  order.OrderType,
		ActorName:  state.JudgeOrMagistrate,
		OccurredAt: now,
	})

	return stores, nil
}

// AmendIssuedOrder files a slip-rule correction. Non-judicial staff acting
// with immediate serve-intent may treat the correction as already
// authoritative; every other amendment loops back through draft review.
func (s *orderLifecycleService) AmendIssuedOrder(ctx context.Context, cmd AmendOrderCommand) (OrderStores, error) {
	state := cmd.Case.ManageOrders
	drafts := cmd.Case.DraftOrders
	finals := cmd.Case.FinalOrders

	ref := strings.TrimSpace(state.AmendOrderList)
	if ref == "" {
		return OrderStores{}, fmt.Errorf("%w: amend order selection is required", ErrOrderInvalidInput)
	}

	order, _, ok := finals.FindByID(ref)
	if !ok {
		return OrderStores{}, fmt.Errorf("%w: no issued order for selection %q", ErrOrderNotFound, ref)
	}

	source := order.Document
	sourceWelsh := false
	if source == nil {
		source = order.DocumentWelsh
		sourceWelsh = true
	}
	if source == nil {
		return OrderStores{}, fmt.Errorf("%w: issued order %s has no document to stamp", ErrOrderInvalidInput, order.ID)
	}

	stamped, err := s.stamper.Stamp(ctx, *source)
	if err != nil {
		return OrderStores{}, fmt.Errorf("%w: %v", ErrStamping, err)
	}

	uploaded, err := s.files.Upload(ctx, stamped, amendedFilename(source.FileName), amendedContentType)
	if err != nil {
		return OrderStores{}, fmt.Errorf("%w: %v", ErrDocumentStorage, err)
	}

	// The amended record carries the stamped document in the slot the source
	// came from; the other variant is dropped rather than kept stale.
	var amendedDoc, amendedDocWelsh *Document
	if sourceWelsh {
		amendedDocWelsh = &uploaded
	} else {
		amendedDoc = &uploaded
	}

	now := s.clock()
	serveIntent := state.ServeOrderNow == domain.Yes || state.ServeDecision == domain.ServeDecisionFinaliseServeLater
	servedImmediately := cmd.Role != domain.RoleJudge && serveIntent

	var stores OrderStores
	var amendedID string

	if servedImmediately {
		amended := order
		amended.ID = orderIDPrefix + s.newID()
		amended.Document = amendedDoc
		amended.DocumentWelsh = amendedDocWelsh
		amended.DateCreated = now
		amended.OrderAmendedDate = &now

		amendedID = amended.ID
		stores = OrderStores{
			DraftOrders: drafts.Sorted(),
			FinalOrders: finals.Insert(amended),
		}
	} else {
		draft := DraftOrder{
			ID:             draftIDPrefix + s.newID(),
			OrderType:      order.OrderType,
			OrderTypeLabel: order.OrderTypeLabel,
			Document:       amendedDoc,
			DocumentWelsh:  amendedDocWelsh,
			JudgeNotes:     order.JudgeNotes,
			OtherDetails: domain.DraftOtherDetails{
				CreatedBy:   order.OtherDetails.CreatedBy,
				DateCreated: now,
				Status:      domain.DraftStatusDraft,
			},
		}

		amendedID = draft.ID
		stores = OrderStores{
			DraftOrders: drafts.Insert(draft),
			FinalOrders: finals.Sorted(),
		}
	}

	s.publishEvent(ctx, OrderEvent{
		Type:       orderEventAmended,
		CaseID:     cmd.Case.ID,
		OrderID:    amendedID,
		OrderType:  order.OrderType,
		OccurredAt: now,
		Metadata: map[string]string{
			"amends": order.ID,
			"served": fmt.Sprintf("%t", servedImmediately),
		},
	})

	return stores, nil
}

// renderDocument asks the rendering collaborator for one language variant.
// A failure is logged and the variant treated as absent; it never aborts the
// surrounding operation, so an English document can succeed even when Welsh
// generation fails.
func (s *orderLifecycleService) renderDocument(ctx context.Context, caseID, template, filename string, data map[string]any) *Document {
	rendered, err := s.renderer.Render(ctx, RenderRequest{
		Template: template,
		FileName: filename,
		Data:     data,
	})
	if err != nil {
		s.logger(ctx, "order.render.failed", map[string]any{
			"caseId":   caseID,
			"template": template,
			"filename": filename,
			"error":    err.Error(),
		})
		return nil
	}
	return &Document{
		URL:       rendered.URL,
		BinaryURL: rendered.BinaryURL,
		FileName:  filename,
		Hash:      rendered.Hash,
	}
}

func (s *orderLifecycleService) renderData(c CaseData, fields domain.OrderFields) map[string]any {
	data := map[string]any{
		"caseId":      c.ID,
		"applicants":  partyLabels(c.Applicants),
		"respondents": partyLabels(c.Respondents),
	}
	if fields.Hearing != nil {
		data["courtName"] = fields.Hearing.CourtName
		data["judgeTitle"] = fields.Hearing.JudgeTitle
		data["judgeName"] = fields.Hearing.JudgeName
		if fields.Hearing.HearingDate != nil {
			data["hearingDate"] = fields.Hearing.HearingDate.Format(courtDateLayout)
		}
	}
	payload := fields.Payload
	switch {
	case payload.ChildArrangements != nil:
		data["subType"] = payload.ChildArrangements.SubType
		data["childrenNames"] = payload.ChildArrangements.ChildrenNames
		data["conditions"] = s.sanitiseText(payload.ChildArrangements.Conditions)
	case payload.Undertaking != nil:
		data["partyGiving"] = payload.Undertaking.PartyGiving
		data["terms"] = s.sanitiseText(payload.Undertaking.Terms)
		data["penalNoticeAttached"] = string(payload.Undertaking.PenalNoticeAttached)
	case payload.Guardian != nil:
		data["guardianNames"] = payload.Guardian.GuardianNames
		data["relationship"] = payload.Guardian.Relationship
	case payload.Injunction != nil:
		data["respondentName"] = payload.Injunction.RespondentName
		data["protectedParties"] = payload.Injunction.ProtectedParties
		data["prohibitedActs"] = s.sanitiseText(payload.Injunction.ProhibitedActs)
		data["powerOfArrest"] = string(payload.Injunction.PowerOfArrest)
	case payload.BlankOrder != nil:
		data["directions"] = s.sanitiseText(payload.BlankOrder.Directions)
	}
	return data
}

func (s *orderLifecycleService) sanitiseText(text string) string {
	return strings.TrimSpace(s.sanitise.Sanitize(text))
}

func (s *orderLifecycleService) publishEvent(ctx context.Context, event OrderEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderEvent(ctx, event); err != nil {
		s.logger(ctx, "order.event.publish.failed", map[string]any{
			"type":   event.Type,
			"caseId": event.CaseID,
			"order":  event.OrderID,
			"error":  err.Error(),
		})
	}
}

// amendedFilename prefixes the stamped copy's filename. Prefixing is
// idempotent: an already amended filename passes through unchanged.
func amendedFilename(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, amendedFilenamePrefix) {
		return name
	}
	return amendedFilenamePrefix + name
}

func previewFilename(state ManageOrdersState) string {
	if state.PreviewDocument != nil && strings.TrimSpace(state.PreviewDocument.FileName) != "" {
		return strings.TrimSpace(state.PreviewDocument.FileName)
	}
	if state.PreviewDocumentCy != nil && strings.TrimSpace(state.PreviewDocumentCy.FileName) != "" {
		return strings.TrimSpace(state.PreviewDocumentCy.FileName)
	}
	return ""
}

func documentFilename(doc *Document, fallback string) string {
	if doc != nil && strings.TrimSpace(doc.FileName) != "" {
		return doc.FileName
	}
	return fallback
}

func formatCourtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(courtDateLayout)
}

// recipientsLine concatenates the serving labels of the selected recipient
// groups: the solicitor's name for represented parties, otherwise the
// litigant-in-person name.
func recipientsLine(c CaseData, selected []OrderRecipient) string {
	var labels []string
	for _, recipient := range selected {
		switch recipient {
		case domain.RecipientApplicant:
			labels = append(labels, partyLabels(c.Applicants)...)
		case domain.RecipientRespondent:
			labels = append(labels, partyLabels(c.Respondents)...)
		}
	}
	return strings.Join(labels, ", ")
}

func partyLabels(parties []domain.Party) []string {
	labels := make([]string, 0, len(parties))
	for _, party := range parties {
		if label := strings.TrimSpace(party.Label()); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

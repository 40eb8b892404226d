package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/templui/securedocs/internal/markdown"
	"github.com/templui/securedocs/internal/model"
	"github.com/templui/securedocs/internal/repository"
	"github.com/templui/securedocs/internal/session"
)

// AccessState names a step of a secure access request, used in debug logs.
type AccessState string

const (
	StateTokenReceived      AccessState = "token_received"
	StateTokenValidated     AccessState = "token_validated"
	StateTokenRejected      AccessState = "token_rejected"
	StatePolicyChecked      AccessState = "policy_checked"
	StateAllowed            AccessState = "allowed"
	StateDenied             AccessState = "denied"
	StateViewRendered       AccessState = "view_rendered"
	StateGrantRecorded      AccessState = "grant_recorded"
	StateFileStreamed       AccessState = "file_streamed"
	StateCounterIncremented AccessState = "counter_incremented"
)

// ResultClass is the externally visible outcome of an access request.
type ResultClass string

const (
	ClassSuccess          ResultClass = "success"
	ClassPermissionDenied ResultClass = "permission_denied"
	ClassNotFound         ResultClass = "not_found"
	ClassUnavailable      ResultClass = "unavailable"
)

// Classify maps a pipeline error to its result class. Unexpected errors are
// reported as unavailable.
func Classify(err error) ResultClass {
	var denied *PolicyDeniedError
	switch {
	case err == nil:
		return ClassSuccess
	case IsTokenError(err), errors.As(err, &denied):
		return ClassPermissionDenied
	case errors.Is(err, ErrResourceNotFound):
		return ClassNotFound
	}
	return ClassUnavailable
}

// RequestMeta is what the access log records about the client.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type ViewRequest struct {
	Token    string
	Password string
	Caller   Caller
	Meta     RequestMeta
}

type DownloadRequest struct {
	Token  string
	Caller Caller
	Meta   RequestMeta
	// HeadersOnly answers a HEAD request: headers are sent but no bytes
	// are delivered, so nothing is counted.
	HeadersOnly bool
}

type PermalinkRequest struct {
	DocumentID string
	Password   string
	Caller     Caller
	Meta       RequestMeta
}

type DownloadLink struct {
	Index int
	Name  string
	URL   string
}

// ViewResult is everything needed to render an allowed document view.
type ViewResult struct {
	Document  *model.Document
	Content   *markdown.Rendered
	Downloads []DownloadLink
}

// MintedLinks are fresh secure links for every action on a document.
type MintedLinks struct {
	DocumentID string
	View       string
	Downloads  []DownloadLink
	ExpiresAt  time.Time
}

type AccessPipeline struct {
	documentRepository repository.DocumentRepository
	codec              *TokenCodec
	policy             *AccessPolicy
	capabilities       CapabilityChecker
	grants             *GrantStore
	delivery           *DeliveryService
	analytics          *AnalyticsService
	markdown           *markdown.Parser
	baseURL            string
	linkTTL            time.Duration
}

func NewAccessPipeline(
	documentRepository repository.DocumentRepository,
	codec *TokenCodec,
	policy *AccessPolicy,
	capabilities CapabilityChecker,
	grants *GrantStore,
	delivery *DeliveryService,
	analytics *AnalyticsService,
	markdownParser *markdown.Parser,
	baseURL string,
	linkTTL time.Duration,
) *AccessPipeline {
	return &AccessPipeline{
		documentRepository: documentRepository,
		codec:              codec,
		policy:             policy,
		capabilities:       capabilities,
		grants:             grants,
		delivery:           delivery,
		analytics:          analytics,
		markdown:           markdownParser,
		baseURL:            baseURL,
		linkTTL:            linkTTL,
	}
}

// Caller builds the caller context for a request.
func (p *AccessPipeline) Caller(user *model.User, sess *session.Session) Caller {
	return Caller{
		User:     user,
		Elevated: p.capabilities.Elevated(user),
		Session:  sess,
	}
}

func (p *AccessPipeline) SecureView(ctx context.Context, req ViewRequest) (*ViewResult, error) {
	link, err := p.decode(ctx, req.Token, model.ActionView)
	if err != nil {
		return nil, err
	}

	doc, err := p.authorize(ctx, link.DocumentID, model.ActionView, req.Caller, req.Password, req.Meta)
	if err != nil {
		return nil, err
	}

	result, err := p.render(doc)
	if err != nil {
		return nil, err
	}
	p.transition(ctx, StateViewRendered, "document_id", doc.ID)

	if req.Caller.Session != nil {
		err = p.grants.Record(ctx, req.Caller.Session, doc.ID)
		if err != nil {
			slog.WarnContext(ctx, "failed to record session grant", "error", err, "document_id", doc.ID)
		} else {
			p.transition(ctx, StateGrantRecorded, "document_id", doc.ID)
		}
	}

	p.record(ctx, doc.ID, model.ActionView, req.Caller, req.Meta, "")
	return result, nil
}

// SecureDownload streams the file named by a download token to w. Once
// headers are written the response is committed, so streaming errors are
// only logged.
func (p *AccessPipeline) SecureDownload(ctx context.Context, w http.ResponseWriter, req DownloadRequest) error {
	link, err := p.decode(ctx, req.Token, model.ActionDownload)
	if err != nil {
		return err
	}

	doc, err := p.authorize(ctx, link.DocumentID, model.ActionDownload, req.Caller, "", req.Meta)
	if err != nil {
		return err
	}

	delivery, err := p.delivery.Deliver(ctx, doc, link.FileIndex)
	if err != nil {
		reason := ReasonUnavailable
		if errors.Is(err, ErrResourceNotFound) {
			reason = ReasonNotFound
		}
		p.transition(ctx, StateDenied, "document_id", doc.ID, "reason", reason, "error", err)
		p.record(ctx, doc.ID, model.ActionDownload, req.Caller, req.Meta, reason)
		return err
	}

	delivery.WriteHeaders(w.Header())
	w.WriteHeader(http.StatusOK)

	if req.HeadersOnly {
		_ = delivery.Close()
		slog.DebugContext(ctx, "download headers served", "document_id", doc.ID, "file_index", link.FileIndex)
		return nil
	}

	written, err := delivery.Stream(w)
	if err != nil {
		slog.WarnContext(ctx, "download interrupted", "error", err, "document_id", doc.ID, "bytes", written)
	}
	p.transition(ctx, StateFileStreamed, "document_id", doc.ID, "file_index", link.FileIndex, "bytes", written)

	p.record(ctx, doc.ID, model.ActionDownload, req.Caller, req.Meta, "")
	return nil
}

// Permalink serves the canonical document route. With secure-link-only
// mode on, only sessions holding a fresh grant (or elevated callers) get
// through, and the regular policy still applies afterwards.
func (p *AccessPipeline) Permalink(ctx context.Context, req PermalinkRequest) (*ViewResult, error) {
	doc, err := p.load(ctx, req.DocumentID, model.ActionView, req.Caller, req.Meta)
	if err != nil {
		return nil, err
	}

	if p.policy.Settings().SecureLinkOnly && !req.Caller.Elevated && !p.grants.Check(req.Caller.Session, doc.ID) {
		p.deny(ctx, doc.ID, model.ActionView, req.Caller, req.Meta, ReasonLinkRequired)
		return nil, &PolicyDeniedError{Reason: ReasonLinkRequired}
	}

	err = p.check(ctx, doc, model.ActionView, req.Caller, req.Password, req.Meta)
	if err != nil {
		return nil, err
	}

	if req.Password != "" && req.Caller.Session != nil {
		err = req.Caller.Session.Save(ctx)
		if err != nil {
			slog.WarnContext(ctx, "failed to save password unlock", "error", err, "document_id", doc.ID)
		}
	}

	result, err := p.render(doc)
	if err != nil {
		return nil, err
	}
	p.transition(ctx, StateViewRendered, "document_id", doc.ID)

	p.record(ctx, doc.ID, model.ActionView, req.Caller, req.Meta, "")
	return result, nil
}

// MintLinks issues a view link and one download link per file. Only
// elevated callers may mint.
func (p *AccessPipeline) MintLinks(ctx context.Context, caller Caller, documentID string, ttl time.Duration) (*MintedLinks, error) {
	if !caller.Elevated {
		return nil, &PolicyDeniedError{Reason: ReasonPermission}
	}
	if ttl <= 0 {
		ttl = p.linkTTL
	}

	doc, err := p.documentRepository.ByID(documentID)
	if errors.Is(err, repository.ErrDocumentNotFound) {
		return nil, fmt.Errorf("%w: document %s", ErrResourceNotFound, documentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	token, err := p.codec.Encode(doc.ID, model.ActionView, 0, ttl)
	if err != nil {
		return nil, err
	}

	downloads, err := p.downloadLinks(doc, ttl)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "secure links minted", "document_id", doc.ID, "user_id", caller.User.ID, "ttl", ttl)

	return &MintedLinks{
		DocumentID: doc.ID,
		View:       ViewURL(p.baseURL, token),
		Downloads:  downloads,
		ExpiresAt:  time.Now().Add(ttl).Truncate(time.Second),
	}, nil
}

func (p *AccessPipeline) decode(ctx context.Context, raw string, action model.Action) (*model.SecureLink, error) {
	p.transition(ctx, StateTokenReceived, "action", action)

	link, err := p.codec.Decode(raw)
	if err == nil && link.Action != action {
		err = fmt.Errorf("%w: %s token used for %s", ErrTokenMalformed, link.Action, action)
	}
	if err != nil {
		p.transition(ctx, StateTokenRejected, "action", action, "diagnosis", TokenDiagnosis(err))
		return nil, err
	}

	p.transition(ctx, StateTokenValidated, "document_id", link.DocumentID, "action", action, "file_index", link.FileIndex)
	return link, nil
}

func (p *AccessPipeline) authorize(ctx context.Context, documentID string, action model.Action, caller Caller, password string, meta RequestMeta) (*model.Document, error) {
	doc, err := p.load(ctx, documentID, action, caller, meta)
	if err != nil {
		return nil, err
	}
	err = p.check(ctx, doc, action, caller, password, meta)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// load hides unpublished documents from everyone but elevated callers.
func (p *AccessPipeline) load(ctx context.Context, documentID string, action model.Action, caller Caller, meta RequestMeta) (*model.Document, error) {
	doc, err := p.documentRepository.ByID(documentID)
	if err != nil && !errors.Is(err, repository.ErrDocumentNotFound) {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if err != nil || (!doc.Published && !caller.Elevated) {
		p.deny(ctx, documentID, action, caller, meta, ReasonNotFound)
		return nil, fmt.Errorf("%w: document %s", ErrResourceNotFound, documentID)
	}
	return doc, nil
}

func (p *AccessPipeline) check(ctx context.Context, doc *model.Document, action model.Action, caller Caller, password string, meta RequestMeta) error {
	decision := p.policy.Evaluate(doc, caller, password)
	p.transition(ctx, StatePolicyChecked, "document_id", doc.ID, "allowed", decision.Allowed)

	if !decision.Allowed {
		p.deny(ctx, doc.ID, action, caller, meta, decision.Reason)
		return decision.Err()
	}

	p.transition(ctx, StateAllowed, "document_id", doc.ID, "action", action)
	return nil
}

func (p *AccessPipeline) deny(ctx context.Context, documentID string, action model.Action, caller Caller, meta RequestMeta, reason DenyReason) {
	p.transition(ctx, StateDenied, "document_id", documentID, "action", action, "reason", reason)
	p.record(ctx, documentID, action, caller, meta, reason)
}

func (p *AccessPipeline) render(doc *model.Document) (*ViewResult, error) {
	content, err := p.markdown.Render(doc.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}

	downloads, err := p.downloadLinks(doc, p.linkTTL)
	if err != nil {
		return nil, err
	}

	return &ViewResult{
		Document:  doc,
		Content:   content,
		Downloads: downloads,
	}, nil
}

func (p *AccessPipeline) downloadLinks(doc *model.Document, ttl time.Duration) ([]DownloadLink, error) {
	files := doc.FileList()
	links := make([]DownloadLink, 0, len(files))

	for i, file := range files {
		token, err := p.codec.Encode(doc.ID, model.ActionDownload, i, ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to mint download link: %w", err)
		}

		name := file.Name
		if name == "" {
			name = SanitizeFilename(file.URL)
		}

		links = append(links, DownloadLink{
			Index: i,
			Name:  name,
			URL:   DownloadURL(p.baseURL, token),
		})
	}

	return links, nil
}

// record logs the access event. Analytics failures never fail the request.
func (p *AccessPipeline) record(ctx context.Context, documentID string, action model.Action, caller Caller, meta RequestMeta, reason DenyReason) {
	event := &model.AccessEvent{
		DocumentID: documentID,
		UserID:     caller.UserID(),
		Action:     action,
		Outcome:    model.OutcomeAllowed,
		Reason:     string(reason),
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}
	if reason != "" {
		event.Outcome = model.OutcomeDenied
	}

	err := p.analytics.Record(ctx, event)
	if err != nil {
		slog.ErrorContext(ctx, "failed to record access event", "error", err, "document_id", documentID, "action", action)
		return
	}

	if event.Outcome == model.OutcomeAllowed {
		p.transition(ctx, StateCounterIncremented, "document_id", documentID, "action", action)
	}
}

func (p *AccessPipeline) transition(ctx context.Context, state AccessState, args ...any) {
	slog.DebugContext(ctx, "secure access", append([]any{"state", state}, args...)...)
}

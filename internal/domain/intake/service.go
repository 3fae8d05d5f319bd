package intake

import (
	"context"
	"encoding/hex"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"leadintake/internal/backend"
	"leadintake/internal/domain"
	"leadintake/internal/domain/lead"
	"leadintake/internal/domain/staff"
	"leadintake/internal/domain/upload"
	"leadintake/internal/pkg/metrics"
)

// duplicateWindow is how long an identical successful create blocks a repeat
// from the same actor, covering double submits from parallel tabs.
const duplicateWindow = 10 * time.Second

// Service runs lead form sessions against the backend
type Service struct {
	store     *Store
	backend   Backend
	uploader  Uploader
	managers  ManagerResolver
	journal   Journal
	publisher Publisher
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func NewService(
	store *Store,
	backend Backend,
	uploader Uploader,
	managers ManagerResolver,
	journal Journal,
	m *metrics.Metrics,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Service{
		store:    store,
		backend:  backend,
		uploader: uploader,
		managers: managers,
		journal:  journal,
		metrics:  m,
		log:      log,
	}
}

// SetPublisher attaches the live channel that receives every new view.
func (s *Service) SetPublisher(p Publisher) {
	s.publisher = p
}

// ---- Lifecycle ----

// Open starts a session for actor, editing leadID when it is set.
func (s *Service) Open(ctx context.Context, actor lead.Actor, leadID string) (*View, error) {
	draft := lead.NewDraft(actor)
	if leadID = strings.TrimSpace(leadID); leadID != "" {
		l, err := s.backend.GetLead(ctx, leadID)
		if err != nil {
			return nil, err
		}
		draft = lead.DraftFromLead(l, actor)
	}

	sess := newSession(uuid.New().String(), actor, upload.NewCorrelationID(), draft)
	sess.options = s.LoadOptions(ctx, actor, draft)
	s.store.Put(sess)

	if draft.Selection() != "" {
		s.refreshSchema(ctx, sess)
	}

	s.log.Debug("form session opened",
		zap.String("session_id", sess.ID),
		zap.String("user_id", actor.ID),
		zap.String("role", string(actor.Role)),
		zap.String("lead_id", leadID),
	)
	return s.View(sess.ID, actor)
}

// View returns the current state of session id.
func (s *Service) View(id string, actor lead.Actor) (*View, error) {
	sess, err := s.store.Get(id, actor.ID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.viewLocked(sess), nil
}

// Close discards the session and its draft.
func (s *Service) Close(id string, actor lead.Actor) error {
	if _, err := s.store.Get(id, actor.ID); err != nil {
		return err
	}
	s.store.Delete(id)
	if s.publisher != nil {
		s.publisher.Close(id)
	}
	return nil
}

// ---- Draft edits ----

// Select switches the lead type or bank and reloads the schema for it.
// Only the most recent selection's schema is applied.
func (s *Service) Select(ctx context.Context, id string, actor lead.Actor, selection string) (*View, error) {
	sess, err := s.store.Get(id, actor.ID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	selection = strings.TrimSpace(selection)
	if selection != sess.draft.Selection() {
		next := sess.draft.Clone()
		next.Select(selection)
		if !next.IsEditing() {
			clear(next.Dynamic)
		}
		sess.draft = next
	}
	sess.mu.Unlock()

	s.refreshSchema(ctx, sess)
	return s.publishView(sess), nil
}

// EditField sets a standard or schema field and recalculates commission.
func (s *Service) EditField(id string, actor lead.Actor, key, value string) (*View, error) {
	sess, err := s.store.Get(id, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.update(sess, func() error {
		policy := sess.context().Policy(sess.draft)
		if isCommissionKey(key) && !policy.CommissionApplies() {
			return lead.ErrFieldNotEditable
		}
		schemaField := sess.schema != nil && sess.schema.HasField(key)
		next, err := lead.Edit(sess.draft, key, value, schemaField)
		if err != nil {
			return err
		}
		sess.draft = next
		return nil
	})
}

// SetAssignment changes the agent, sub-agent or bank the lead is assigned to.
func (s *Service) SetAssignment(id string, actor lead.Actor, req AssignmentRequest) (*View, error) {
	sess, err := s.store.Get(id, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.update(sess, func() error {
		policy := sess.context().Policy(sess.draft)
		next := sess.draft.Clone()

		if req.Agent != nil {
			if !actor.Role.AssignsAgents() {
				return lead.ErrFieldNotEditable
			}
			next.AgentAssignment = strings.TrimSpace(*req.Agent)
		}
		if req.SubAgent != nil {
			if !policy.CanSelectSubAgent {
				return lead.ErrFieldNotEditable
			}
			next.SubAgentAssignment = strings.TrimSpace(*req.SubAgent)
		}
		if req.AssignBank != nil {
			if !policy.CanAssignBank {
				return lead.ErrFieldNotEditable
			}
			next.AssignBankID = strings.TrimSpace(*req.AssignBank)
		}

		sess.draft = next
		return nil
	})
}

// ---- Documents ----

// UploadDocument forwards a file to storage and attaches it to the draft.
// A failed upload leaves the draft's documents unchanged.
func (s *Service) UploadDocument(ctx context.Context, id string, actor lead.Actor, req UploadRequest, fileHeader *multipart.FileHeader) (*View, error) {
	sess, err := s.store.Get(id, actor.ID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.submitting {
		sess.mu.Unlock()
		return nil, ErrSessionBusy
	}
	if sess.schema != nil {
		if _, ok := sess.schema.DocumentType(req.DocumentType); !ok {
			sess.mu.Unlock()
			return nil, ErrUnknownDocumentType
		}
	}
	sess.uploads++
	target := upload.Target{
		EntityType:   upload.EntityTypeLead,
		EntityID:     sess.entityID(),
		DocumentType: req.DocumentType,
		Description:  req.Description,
	}
	sess.mu.Unlock()

	doc, uploadErr := s.uploader.Forward(ctx, target, fileHeader)

	return s.update(sess, func() error {
		sess.uploads--
		if uploadErr != nil {
			s.metrics.Uploads.WithLabelValues("failed").Inc()
			return uploadErr
		}
		s.metrics.Uploads.WithLabelValues("ok").Inc()
		next := sess.draft.Clone()
		next.AddDocument(*doc)
		sess.draft = next
		return nil
	})
}

// RemoveDocument detaches the document at index.
func (s *Service) RemoveDocument(id string, actor lead.Actor, index int) (*View, error) {
	sess, err := s.store.Get(id, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.update(sess, func() error {
		next := sess.draft.Clone()
		if !next.RemoveDocument(index) {
			return ErrDocumentNotFound
		}
		sess.draft = next
		return nil
	})
}

// ---- Validation & submission ----

// Validate runs the submission checklist without submitting.
func (s *Service) Validate(id string, actor lead.Actor) (*ValidationResult, error) {
	sess, err := s.store.Get(id, actor.ID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	errs := lead.Validate(sess.draft, sess.context())
	return &ValidationResult{Valid: len(errs) == 0, Errors: messages(errs)}, nil
}

// Submit validates the draft and creates or updates the lead on the backend.
// The session is closed on success and kept intact on any failure.
func (s *Service) Submit(ctx context.Context, id string, actor lead.Actor) (*lead.Lead, error) {
	sess, err := s.store.Get(id, actor.ID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.busy() || sess.loading() {
		sess.mu.Unlock()
		return nil, ErrSessionBusy
	}
	sess.submitting = true
	d := sess.draft.Clone()
	c := sess.context()
	mode := sess.mode()
	sess.mu.Unlock()

	defer func() {
		sess.mu.Lock()
		sess.submitting = false
		sess.mu.Unlock()
	}()

	if errs := lead.Validate(d, c); len(errs) > 0 {
		s.metrics.ValidationFailures.Inc()
		return nil, errs
	}

	payload := lead.Assemble(d, c)
	originalID := ""
	if d.IsEditing() {
		originalID = d.Original.ID
	}
	fp := fingerprint(actor, mode, originalID, payload)

	if mode == domain.SubmissionCreate {
		prior, err := s.journal.FindSucceeded(ctx, fp, time.Now().Add(-duplicateWindow))
		if err != nil {
			s.log.Warn("submission journal lookup failed", zap.String("session_id", sess.ID), zap.Error(err))
		} else if prior != nil {
			s.metrics.Submissions.WithLabelValues(string(mode), "duplicate").Inc()
			return nil, domain.ErrDuplicateSubmission
		}
	}

	if managerID := s.resolveManager(ctx, d, c); managerID != "" {
		payload.BankManager = &managerID
	}

	var saved *lead.Lead
	if mode == domain.SubmissionCreate {
		saved, err = s.backend.CreateLead(ctx, payload)
	} else {
		saved, err = s.backend.UpdateLead(ctx, originalID, payload)
	}

	record := &domain.Submission{
		SessionID:   sess.ID,
		ActorID:     actor.ID,
		ActorRole:   string(actor.Role),
		Mode:        mode,
		LeadID:      originalID,
		LeadType:    string(payload.LeadType),
		Fingerprint: fp,
	}
	if payload.BankID != nil {
		record.BankID = *payload.BankID
	}

	if err != nil {
		msg := backend.Message(err)
		record.Status = domain.SubmissionFailed
		record.Error = msg
		s.record(ctx, record)
		s.metrics.Submissions.WithLabelValues(string(mode), "failed").Inc()
		s.log.Warn("lead submission failed",
			zap.String("session_id", sess.ID),
			zap.String("mode", string(mode)),
			zap.Error(err),
		)
		return nil, &SubmissionError{Message: msg, Err: err}
	}

	if saved != nil && saved.ID != "" {
		record.LeadID = saved.ID
	}
	record.Status = domain.SubmissionSucceeded
	s.record(ctx, record)
	s.metrics.Submissions.WithLabelValues(string(mode), "ok").Inc()

	s.store.Delete(sess.ID)
	if s.publisher != nil {
		s.publisher.Close(sess.ID)
	}
	s.log.Info("lead submitted",
		zap.String("session_id", sess.ID),
		zap.String("mode", string(mode)),
		zap.String("lead_id", record.LeadID),
		zap.String("user_id", actor.ID),
	)
	return saved, nil
}

// ListSubmissions returns journal rows matching f, newest first.
func (s *Service) ListSubmissions(ctx context.Context, f domain.SubmissionFilter) ([]SubmissionResponse, int64, error) {
	rows, total, err := s.journal.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	items := make([]SubmissionResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, toSubmissionResponse(r))
	}
	return items, total, nil
}

// Preview renders, validates and assembles a draft against an unsaved schema.
func (s *Service) Preview(actor lead.Actor, req PreviewRequest) (*PreviewResult, error) {
	if req.Role != "" {
		actor.Role = req.Role
	}
	if err := req.Schema.Check(); err != nil {
		return nil, err
	}

	var d *lead.Draft
	if req.Draft != nil {
		d = req.Draft.Clone()
	} else {
		d = lead.NewDraft(actor)
	}
	if d.Selection() == "" {
		switch {
		case req.Schema.LeadType == lead.TypeNewLead:
			d.Select(lead.NewLeadOption)
		case lead.RefID(req.Schema.Bank) != "":
			d.Select(lead.RefID(req.Schema.Bank))
		}
	}

	c := lead.Context{Actor: actor, Schema: req.Schema, CommissionLimit: req.CommissionLimit}
	errs := lead.Validate(d, c)
	res := &PreviewResult{
		Policy:        c.Policy(d),
		Fields:        lead.Render(req.Schema, d),
		DocumentTypes: lead.RenderDocuments(req.Schema, d),
		Valid:         len(errs) == 0,
		Errors:        messages(errs),
	}
	if res.Valid {
		res.Payload = lead.Assemble(d, c)
	}
	return res, nil
}

// ---- Loading ----

// LoadOptions fetches the dropdown lists the actor's form needs.
// Each list falls back to empty when its request fails.
func (s *Service) LoadOptions(ctx context.Context, actor lead.Actor, draft *lead.Draft) Options {
	policy := lead.Classify(actor.Role, draft.IsEditing(), draft.AgentAssignment)
	opts := Options{
		Banks:     []lead.Ref{},
		Agents:    []lead.Ref{},
		SubAgents: []lead.Ref{},
		LoanTypes: LoanTypes,
	}

	g, gctx := errgroup.WithContext(ctx)
	load := func(name string, dst *[]lead.Ref, fetch func(context.Context) ([]lead.Ref, error)) {
		g.Go(func() error {
			refs, err := fetch(gctx)
			if err != nil {
				s.log.Warn("failed to load options", zap.String("list", name), zap.Error(err))
				return nil
			}
			if refs != nil {
				*dst = refs
			}
			return nil
		})
	}

	load("banks", &opts.Banks, s.backend.ListBanks)
	if policy.LoadsAgents() {
		load("agents", &opts.Agents, s.backend.ListAgents)
	}
	if policy.CanSelectSubAgent {
		load("sub_agents", &opts.SubAgents, s.backend.ListSubAgents)
	}
	_ = g.Wait()
	return opts
}

// refreshSchema reloads the schema and commission limit for the current
// selection. A result is dropped if another selection started meanwhile.
func (s *Service) refreshSchema(ctx context.Context, sess *Session) {
	sess.mu.Lock()
	sess.generation++
	gen := sess.generation
	sess.schema, sess.schemaErr, sess.limit = nil, nil, nil

	d := sess.draft
	selection := d.Selection()
	policy := sess.context().Policy(d)
	wantSchema := selection != "" && policy.UseSchemaPath
	wantLimit := sess.Actor.Role == lead.RoleFranchise && d.LeadType == lead.TypeBank && d.BankID != ""
	bankID := d.BankID
	sess.schemaLoading = wantSchema
	sess.limitLoading = wantLimit
	sess.mu.Unlock()

	if !wantSchema && !wantLimit {
		return
	}

	var (
		schema    *lead.Schema
		schemaErr error
		limit     *lead.CommissionLimit
	)
	if wantSchema {
		schema, schemaErr = s.fetchSchema(ctx, selection)
	}
	if wantLimit {
		limit = s.fetchLimit(ctx, bankID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.generation != gen {
		s.metrics.StaleSchemas.Inc()
		s.log.Debug("dropped stale schema result",
			zap.String("session_id", sess.ID),
			zap.String("selection", selection),
		)
		return
	}
	sess.schema, sess.schemaErr, sess.limit = schema, schemaErr, limit
	sess.schemaLoading, sess.limitLoading = false, false
}

func (s *Service) fetchSchema(ctx context.Context, selection string) (*lead.Schema, error) {
	var (
		schema *lead.Schema
		err    error
	)
	if selection == lead.NewLeadOption {
		schema, err = s.backend.SchemaForNewLead(ctx)
	} else {
		schema, err = s.backend.SchemaForBank(ctx, selection)
	}

	switch {
	case errors.Is(err, lead.ErrSchemaMissing):
		return nil, lead.ErrSchemaMissing
	case err != nil:
		s.log.Warn("failed to load lead form", zap.String("selection", selection), zap.Error(err))
		return nil, nil
	}

	if err := schema.Check(); err != nil {
		s.log.Warn("lead form rejected", zap.String("selection", selection), zap.Error(err))
		return nil, err
	}
	return schema, nil
}

func (s *Service) fetchLimit(ctx context.Context, bankID string) *lead.CommissionLimit {
	limit, err := s.backend.CommissionLimit(ctx, bankID)
	if err != nil {
		s.log.Warn("failed to load commission limit", zap.String("bank_id", bankID), zap.Error(err))
		return nil
	}
	return limit
}

// resolveManager links the SM/BM contact on a fixed-field bank lead to a
// bank manager record. Failures are logged and the lead goes out without one.
func (s *Service) resolveManager(ctx context.Context, d *lead.Draft, c lead.Context) string {
	if s.managers == nil || c.Policy(d).UseSchemaPath || d.IsNewLead(c.Schema) || d.BankID == "" {
		return ""
	}
	id, err := s.managers.ResolveOrCreate(ctx, d.BankID, staff.ContactFromDraft(d))
	if err != nil {
		s.log.Warn("bank manager resolve failed", zap.String("bank_id", d.BankID), zap.Error(err))
		return ""
	}
	return id
}

func (s *Service) record(ctx context.Context, sub *domain.Submission) {
	if err := s.journal.Record(ctx, sub); err != nil {
		s.log.Warn("failed to journal submission",
			zap.String("session_id", sub.SessionID),
			zap.String("status", string(sub.Status)),
			zap.Error(err),
		)
	}
}

// ---- Views ----

// update applies fn under the session lock and publishes the new view.
func (s *Service) update(sess *Session, fn func() error) (*View, error) {
	sess.mu.Lock()
	if err := fn(); err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	v := s.viewLocked(sess)
	sess.mu.Unlock()

	if s.publisher != nil {
		s.publisher.Publish(sess.ID, v)
	}
	return v, nil
}

func (s *Service) publishView(sess *Session) *View {
	v, _ := s.update(sess, func() error { return nil })
	return v
}

func (s *Service) viewLocked(sess *Session) *View {
	d := sess.draft
	c := sess.context()
	v := &View{
		ID:            sess.ID,
		Mode:          string(sess.mode()),
		CorrelationID: sess.CorrelationID,
		Selection:     d.Selection(),
		LeadType:      d.LeadType,
		Policy:        c.Policy(d),
		SchemaLoading: sess.schemaLoading,
		Fields:        []lead.Widget{},
		DocumentTypes: []lead.DocumentSlot{},
		Documents:     d.Documents,
		Standard:      d.Standard,
		Assignment: Assignment{
			Agent:       d.AgentAssignment,
			SubAgent:    d.SubAgentAssignment,
			AssignBank:  d.AssignBankID,
			BankManager: d.BankManager,
		},
		Options:         sess.options,
		CommissionLimit: sess.limit,
		Busy:            sess.busy(),
	}
	if d.IsEditing() {
		v.LeadID = d.Original.ID
	}
	if sess.schema != nil {
		v.SchemaID = sess.schema.ID
		v.Fields = lead.Render(sess.schema, d)
		v.DocumentTypes = lead.RenderDocuments(sess.schema, d)
	}
	if sess.schemaErr != nil {
		v.ConfigurationError = configurationMessage(sess.schemaErr, d.LeadType == lead.TypeNewLead)
	}
	return v
}

func configurationMessage(err error, newLead bool) string {
	if errors.Is(err, lead.ErrSchemaMissing) {
		if newLead {
			return "No New Lead form configured. Ask Admin to set up in Lead Forms."
		}
		return "No Lead Form configured for this bank"
	}
	return err.Error()
}

func isCommissionKey(key string) bool {
	return key == lead.KeyCommissionPercentage || key == lead.KeyCommissionAmount
}

func messages(errs lead.ValidationErrors) []string {
	if len(errs) == 0 {
		return []string{}
	}
	return []string(errs)
}

// fingerprint identifies a submission by who sent what, for duplicate detection.
func fingerprint(actor lead.Actor, mode domain.SubmissionMode, leadID string, p *lead.Payload) string {
	b, err := json.Marshal(struct {
		Actor   string        `json:"actor"`
		Mode    string        `json:"mode"`
		LeadID  string        `json:"leadId"`
		Payload *lead.Payload `json:"payload"`
	}{actor.ID, string(mode), leadID, p})
	if err != nil {
		return ""
	}
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}

package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"sahayak-be/internal/config"
	"sahayak-be/internal/dto"
	"sahayak-be/internal/mapper"
	"sahayak-be/internal/pkg/logger"
	"sahayak-be/internal/repository/unitofwork"
	"sahayak-be/internal/websocket"
	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/dialog/intent"
	"sahayak-be/pkg/dialog/resolver"
	"sahayak-be/pkg/dialog/state"
	"sahayak-be/pkg/eligibility"
	"sahayak-be/pkg/events"
	"sahayak-be/pkg/i18n"
	pkgNats "sahayak-be/pkg/nats"
	"sahayak-be/pkg/retrypolicy"
	"sahayak-be/pkg/scheme"
	"sahayak-be/pkg/session"
	"sahayak-be/pkg/speech"
	"sahayak-be/pkg/store"
)

const (
	// lowConfidenceFloor is the recognition confidence below which a turn
	// is not interpreted at all; the user is asked to repeat or type.
	lowConfidenceFloor = 0.5

	// commitAttempts bounds optimistic-concurrency retries per turn.
	commitAttempts = 3

	// summaryEvery is the turn interval for the periodic recap.
	summaryEvery = 10

	// resolverWindow is how many recent turns the context resolver scans
	// for referring expressions like "that scheme".
	resolverWindow = 10
)

// IConversationService drives multi-turn conversations: it owns the session
// endpoints and the full turn pipeline from utterance to rendered reply.
type IConversationService interface {
	CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	Snapshot(ctx context.Context, sessionID string) (*dto.SessionSnapshotResponse, error)
	Turn(ctx context.Context, req *dto.TurnRequest) (*dto.TurnResponse, error)
	AudioTurn(ctx context.Context, req *dto.AudioTurnRequest) (*dto.TurnResponse, error)
	EndSession(ctx context.Context, sessionID string, persist bool) error
}

type conversationService struct {
	uowFactory    unitofwork.RepositoryFactory
	manager       *session.Manager
	machine       *state.Machine
	engine        *eligibility.Engine
	classifier    intent.Classifier
	resolver      *resolver.Resolver
	schemes       *scheme.Cache
	runner        *retrypolicy.Runner
	hub           *websocket.Hub
	metrics       IMetricsService
	natsPub       *pkgNats.Publisher
	recognizer    speech.Recognizer
	synthesizer   speech.Synthesizer
	sessionMapper *mapper.SessionMapper
	turnBudget    time.Duration
	speakingRate  float64
	logger        logger.ILogger
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	manager *session.Manager,
	schemes *scheme.Cache,
	classifier intent.Classifier,
	hub *websocket.Hub,
	metrics IMetricsService,
	natsPub *pkgNats.Publisher,
	recognizer speech.Recognizer,
	synthesizer speech.Synthesizer,
	cfg *config.Config,
	logger logger.ILogger,
) IConversationService {
	return &conversationService{
		uowFactory:    uowFactory,
		manager:       manager,
		machine:       state.NewMachine(),
		engine:        eligibility.NewEngine(nil),
		classifier:    classifier,
		resolver:      resolver.New(resolverWindow),
		schemes:       schemes,
		runner:        retrypolicy.NewRunner(retrypolicy.Default()),
		hub:           hub,
		metrics:       metrics,
		natsPub:       natsPub,
		recognizer:    recognizer,
		synthesizer:   synthesizer,
		sessionMapper: mapper.NewSessionMapper(),
		turnBudget:    cfg.Session.TurnBudget,
		speakingRate:  cfg.Speech.SpeakingRate,
		logger:        logger,
	}
}

func (cs *conversationService) CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	var lang i18n.Language
	if req.Language != "" {
		lang = i18n.Parse(req.Language)
	}

	sess, err := cs.manager.Create(ctx, lang, req.ReturningUserRef)
	if err != nil {
		return nil, err
	}

	if req.Consent != nil {
		consent := store.Consent{
			AudioRetention:   req.Consent.AudioRetention,
			ProfileRetention: req.Consent.ProfileRetention,
		}
		sess, err = cs.manager.Commit(ctx, sess.ID, func(s *store.Session) error {
			s.Consent = consent
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	cs.createSkeletonRecord(ctx, sess)

	greeting := i18n.Render(i18n.DefaultLanguage, i18n.MsgChooseLanguage)
	if sess.State == store.StateMainMenu {
		greeting = i18n.Render(sess.Language, i18n.MsgMainMenu)
	}

	cs.publish(ctx, events.SessionStarted(sess.ID, string(sess.Language), req.ReturningUserRef != "", time.Now()))

	return &dto.SessionResponse{
		SessionId: sess.ID,
		Language:  string(sess.Language),
		State:     string(sess.State),
		Greeting:  greeting,
	}, nil
}

// createSkeletonRecord writes the durable session skeleton for returning-user
// language inheritance. Failure only costs that inheritance, never the
// session.
func (cs *conversationService) createSkeletonRecord(ctx context.Context, sess *store.Session) {
	if sess.UserRef == "" {
		return
	}
	record, err := cs.sessionMapper.ToRecord(sess, time.Time{})
	if err != nil {
		return
	}
	record.EndedAt = nil
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRecordRepository().Create(ctx, record); err != nil {
		cs.logger.Warn("CONVERSATION", "Failed to create session record", map[string]interface{}{
			"session_id": sess.ID,
			"error":      err.Error(),
		})
	}
}

func (cs *conversationService) Snapshot(ctx context.Context, sessionID string) (*dto.SessionSnapshotResponse, error) {
	sess, err := cs.manager.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	res := &dto.SessionSnapshotResponse{
		SessionId:      sess.ID,
		Language:       string(sess.Language),
		State:          string(sess.State),
		ActiveSchemeId: sess.Context.ActiveSchemeID,
		ActiveQuestion: sess.Context.ActiveQuestion,
		TurnCount:      sess.TurnCount,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
	}
	for _, s := range sess.StateStack {
		res.StateStack = append(res.StateStack, string(s))
	}
	for _, t := range sess.RecentTurns(20) {
		res.History = append(res.History, dto.TurnSnapshot{
			Role:      string(t.Role),
			Text:      t.Text,
			Intent:    t.Intent,
			Timestamp: t.Timestamp,
		})
	}
	return res, nil
}

// turnOutput carries everything one committed turn produced out of the
// mutation closure.
type turnOutput struct {
	text     string
	prompt   i18n.Key
	mentions []store.Mention
	ended    bool
	errKind  apperror.Kind
}

func (cs *conversationService) Turn(ctx context.Context, req *dto.TurnRequest) (*dto.TurnResponse, error) {
	sess, err := cs.manager.Get(ctx, req.SessionId)
	if err != nil {
		return nil, err
	}
	lang := sess.Language
	if lang == "" {
		lang = i18n.DefaultLanguage
	}

	stop := cs.watchBudget(req.SessionId, lang)
	defer stop()

	if req.Confidence > 0 && req.Confidence < lowConfidenceFloor {
		return cs.lowConfidenceTurn(ctx, req, lang)
	}

	cand, err := cs.classify(ctx, req, lang, sess)
	if err != nil {
		cs.recordError(ctx, req.SessionId, err)
		return nil, err
	}

	var out turnOutput
	mutate := func(s *store.Session) error {
		out = turnOutput{}
		now := time.Now()

		userTurn := store.Turn{
			Role:      store.RoleUser,
			Text:      req.Utterance,
			Timestamp: now,
			Intent:    string(cand.Type),
		}
		if id := cand.Slot(intent.SlotScheme); id != "" {
			userTurn.Mentions = append(userTurn.Mentions, store.Mention{Kind: store.MentionScheme, Value: id})
		}
		s.AppendTurn(userTurn)
		s.TurnCount++

		before := checkpoint(s)
		t := cs.machine.Step(s, cand)
		cs.runEffects(ctx, s, t, cand, before, &out)

		if out.errKind != "" {
			s.ErrorCount++
		}

		text := out.text
		if summary := cs.maybeSummarize(s); summary != "" {
			text = summary + " " + text
			out.text = text
		}

		s.AppendTurn(store.Turn{
			Role:      store.RoleAssistant,
			Text:      text,
			Timestamp: now,
			Mentions:  out.mentions,
		})
		return nil
	}

	var committed *store.Session
	for attempt := 0; attempt < commitAttempts; attempt++ {
		committed, err = cs.manager.Commit(ctx, req.SessionId, mutate)
		if err == nil || !apperror.Is(err, apperror.KindConflict) {
			break
		}
	}
	if err != nil {
		cs.recordError(ctx, req.SessionId, err)
		return nil, err
	}

	now := time.Now()
	cs.publish(ctx, events.TurnCompleted(committed.ID, string(committed.State), string(cand.Type), committed.TurnCount, false, now))
	if out.errKind != "" {
		cs.publish(ctx, events.ErrorRecorded(committed.ID, string(out.errKind), now))
	}

	if out.ended {
		// The state machine already confirmed the end; the lifecycle
		// manager archives and tombstones.
		if err := cs.finishSession(ctx, committed); err != nil {
			cs.logger.Warn("CONVERSATION", "Failed to finish ended session", map[string]interface{}{
				"session_id": committed.ID,
				"error":      err.Error(),
			})
		}
	}

	res := &dto.TurnResponse{
		SessionId:    committed.ID,
		ResponseText: out.text,
		State:        string(committed.State),
		Suggestions:  suggestionsFor(committed),
		Ended:        out.ended,
	}
	cs.hub.Send(committed.ID, websocket.StatusMessage{
		Kind: websocket.StatusTurn,
		Text: out.text,
		Data: map[string]interface{}{"state": res.State, "ended": out.ended},
	})
	return res, nil
}

func (cs *conversationService) AudioTurn(ctx context.Context, req *dto.AudioTurnRequest) (*dto.TurnResponse, error) {
	if cs.recognizer == nil {
		return nil, apperror.New(apperror.KindValidation, "audio turns are not enabled")
	}

	sess, err := cs.manager.Get(ctx, req.SessionId)
	if err != nil {
		return nil, err
	}
	lang := sess.Language
	if lang == "" {
		lang = i18n.DefaultLanguage
	}

	content, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, err, "audio is not valid base64")
	}

	transcript, err := cs.recognizer.Transcribe(ctx, speech.Audio{Content: content, MIME: req.MIME}, lang)
	if err != nil {
		cs.recordError(ctx, req.SessionId, err)
		return nil, err
	}

	res, err := cs.Turn(ctx, &dto.TurnRequest{
		SessionId:  req.SessionId,
		Utterance:  transcript.Text,
		Confidence: transcript.Confidence,
	})
	if err != nil {
		return nil, err
	}

	if cs.synthesizer != nil && res.ResponseText != "" {
		audio, err := cs.synthesizer.Synthesize(ctx, res.ResponseText, lang, cs.speakingRate)
		if err != nil {
			// Degrade to text only; the reply is already committed.
			cs.logger.Warn("CONVERSATION", "Failed to synthesize reply", map[string]interface{}{
				"session_id": req.SessionId,
				"error":      err.Error(),
			})
		} else {
			res.Audio = base64.StdEncoding.EncodeToString(audio.Content)
			res.AudioMIME = audio.MIME
		}
	}
	return res, nil
}

func (cs *conversationService) EndSession(ctx context.Context, sessionID string, persist bool) error {
	sess, err := cs.manager.Get(ctx, sessionID)
	if err != nil {
		if apperror.Is(err, apperror.KindExpired) {
			return nil
		}
		return err
	}
	if persist && !sess.Consent.ProfileRetention {
		persist = false
	}
	if err := cs.manager.End(ctx, sessionID, persist); err != nil {
		return err
	}

	now := time.Now()
	cs.metrics.RecordEnd(ctx, sess, now)
	cs.publish(ctx, events.SessionEnded(sess.ID, sess.Completed, sess.TurnCount, sess.ErrorCount, now.Sub(sess.CreatedAt), now))
	return nil
}

// finishSession completes an end reached through conversation (the user said
// goodbye and confirmed) rather than through the end endpoint.
func (cs *conversationService) finishSession(ctx context.Context, sess *store.Session) error {
	persist := sess.Consent.ProfileRetention
	if err := cs.manager.End(ctx, sess.ID, persist); err != nil {
		return err
	}
	now := time.Now()
	cs.metrics.RecordEnd(ctx, sess, now)
	cs.publish(ctx, events.SessionEnded(sess.ID, sess.Completed, sess.TurnCount, sess.ErrorCount, now.Sub(sess.CreatedAt), now))
	return nil
}

// lowConfidenceTurn records the unintelligible exchange without interpreting
// it; the alternative of guessing an intent from noise causes worse
// conversations than asking to repeat.
func (cs *conversationService) lowConfidenceTurn(ctx context.Context, req *dto.TurnRequest, lang i18n.Language) (*dto.TurnResponse, error) {
	reply := i18n.Render(lang, i18n.MsgRepeatOrSwitch)

	var committed *store.Session
	var err error
	mutate := func(s *store.Session) error {
		now := time.Now()
		s.AppendTurn(store.Turn{Role: store.RoleUser, Text: req.Utterance, Timestamp: now, LowConfidence: true})
		s.AppendTurn(store.Turn{Role: store.RoleAssistant, Text: reply, Timestamp: now})
		s.TurnCount++
		return nil
	}
	for attempt := 0; attempt < commitAttempts; attempt++ {
		committed, err = cs.manager.Commit(ctx, req.SessionId, mutate)
		if err == nil || !apperror.Is(err, apperror.KindConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	cs.publish(ctx, events.TurnCompleted(committed.ID, string(committed.State), string(intent.Unknown), committed.TurnCount, true, time.Now()))

	return &dto.TurnResponse{
		SessionId:    committed.ID,
		ResponseText: reply,
		State:        string(committed.State),
		Suggestions:  suggestionsFor(committed),
	}, nil
}

func (cs *conversationService) classify(ctx context.Context, req *dto.TurnRequest, lang i18n.Language, sess *store.Session) (intent.Candidate, error) {
	if req.Intent != "" {
		cand := intent.Candidate{Type: intent.Type(req.Intent), Confidence: 1}
		if req.Confidence > 0 {
			cand.Confidence = req.Confidence
		}
		cand.Slots = map[string]string{}
		if req.Language != "" {
			cand.Slots[intent.SlotLanguage] = req.Language
		}
		if cand.Type == intent.ProvideValue {
			cand.Slots[intent.SlotValue] = req.Utterance
		}
		return cand, nil
	}

	var cand intent.Candidate
	err := cs.runner.Do(ctx, func(ctx context.Context) error {
		var cerr error
		cand, cerr = cs.classifier.Classify(ctx, req.Utterance, lang, sess)
		return cerr
	})
	return cand, err
}

// watchBudget pushes a "still working" notice over the session's websocket
// when a turn runs past its budget. The returned stop func must be called
// once the turn resolves.
func (cs *conversationService) watchBudget(sessionID string, lang i18n.Language) func() {
	if cs.turnBudget <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-time.After(cs.turnBudget):
			cs.hub.Send(sessionID, websocket.StatusMessage{
				Kind: websocket.StatusStillWorking,
				Text: i18n.Render(lang, i18n.MsgStillWorking),
			})
		case <-done:
		}
	}()
	var once bool
	return func() {
		if !once {
			once = true
			close(done)
		}
	}
}

func (cs *conversationService) recordError(ctx context.Context, sessionID string, err error) {
	kind := apperror.KindOf(err)
	cs.publish(ctx, events.ErrorRecorded(sessionID, string(kind), time.Now()))
	if !apperror.Retryable(err) {
		return
	}
	// Count the failure against the session without failing again when the
	// session itself is the problem.
	_, cerr := cs.manager.Commit(ctx, sessionID, func(s *store.Session) error {
		s.ErrorCount++
		return nil
	})
	if cerr != nil {
		cs.logger.Debug("CONVERSATION", "Could not count error against session", map[string]interface{}{
			"session_id": sessionID,
		})
	}
}

func (cs *conversationService) publish(ctx context.Context, evt events.Event) {
	if cs.natsPub == nil {
		return
	}
	if err := cs.natsPub.Publish(ctx, evt); err != nil {
		cs.logger.Warn("CONVERSATION", "Failed to publish event", map[string]interface{}{
			"event": evt.EventType(),
			"error": err.Error(),
		})
	}
}

// runEffects executes the machine's side effects against the draft session
// and fills out. Failures never abort the turn: they become conversational
// fallbacks so the commit always lands.
// turnCheckpoint is the dialog position captured before a state-machine step.
// Effect failures roll back to it, so a transition whose effects cannot run
// leaves the user exactly where they were. Popping instead would overshoot on
// re-enter transitions, where the step itself already consumed the stack.
type turnCheckpoint struct {
	state store.State
	stack []store.State
}

func checkpoint(s *store.Session) turnCheckpoint {
	return turnCheckpoint{
		state: s.State,
		stack: append([]store.State(nil), s.StateStack...),
	}
}

func (cp turnCheckpoint) restore(s *store.Session) {
	s.State = cp.state
	s.StateStack = append([]store.State(nil), cp.stack...)
}

func (cs *conversationService) runEffects(ctx context.Context, s *store.Session, t state.Transition, cand intent.Candidate, before turnCheckpoint, out *turnOutput) {
	out.prompt = t.Prompt
	lang := s.Language
	if lang == "" {
		lang = i18n.DefaultLanguage
	}

	for _, eff := range t.Effects {
		switch eff {
		case state.EffectSetLanguage:
			if raw := cand.Slot(intent.SlotLanguage); raw != "" {
				s.Language = i18n.Parse(raw)
			} else if s.Language == "" {
				s.Language = i18n.DefaultLanguage
			}
			lang = s.Language
			out.text = i18n.Render(lang, i18n.MsgLanguageSet) + " " + i18n.Render(lang, i18n.MsgMainMenu)

		case state.EffectResolveTopic:
			if id := cand.Slot(intent.SlotScheme); id != "" {
				s.Context.ActiveSchemeID = id
			} else if s.Context.ActiveSchemeID == "" {
				id, err := cs.resolver.ResolveScheme(s)
				if err != nil {
					cs.fallbackAmbiguous(ctx, s, before, lang, out)
					return
				}
				s.Context.ActiveSchemeID = id
			}

		case state.EffectListSchemes:
			cs.effectListSchemes(ctx, s, cand, before, lang, out)

		case state.EffectShowScheme:
			if !cs.effectShowScheme(ctx, s, cand, before, lang, out) {
				return
			}

		case state.EffectAskNext:
			if !cs.effectAskNext(ctx, s, before, lang, out) {
				return
			}

		case state.EffectRecordAnswer:
			cs.effectRecordAnswer(s, cand, lang, out)

		case state.EffectAdvanceStep:
			cs.effectAdvanceStep(ctx, s)

		case state.EffectShowStep:
			if !cs.effectShowStep(ctx, s, before, lang, out) {
				return
			}

		case state.EffectSubmit:
			s.Completed = true
			out.text = i18n.Render(lang, i18n.MsgSubmitted, cs.schemeName(ctx, s.Context.ActiveSchemeID, lang))

		case state.EffectEndSession:
			out.ended = true
			out.text = i18n.Render(lang, i18n.MsgGoodbye)
		}
	}

	if out.text == "" {
		out.text = cs.renderPrompt(ctx, s, lang, out.prompt)
	}
}

func (cs *conversationService) effectListSchemes(ctx context.Context, s *store.Session, cand intent.Candidate, before turnCheckpoint, lang i18n.Language, out *turnOutput) {
	if category := cand.Slot(intent.SlotCategory); category != "" {
		s.Context.ActiveCategory = category
	}

	snaps := cs.schemes.Cached()
	if len(snaps) == 0 {
		if _, err := cs.schemes.Warm(ctx); err != nil {
			cs.fallbackError(s, before, lang, err, out)
			return
		}
		snaps = cs.schemes.Cached()
	}

	now := time.Now()
	var names []string
	var offered []string
	for _, snap := range snaps {
		if s.Context.ActiveCategory != "" && snap.Category != s.Context.ActiveCategory {
			continue
		}
		if snap.Deadline != nil && snap.Deadline.Before(now) {
			continue
		}
		names = append(names, snap.Name.In(lang))
		offered = append(offered, snap.ID)
		out.mentions = append(out.mentions, store.Mention{Kind: store.MentionScheme, Value: snap.ID})
	}

	if len(offered) == 0 {
		out.text = i18n.Render(lang, i18n.MsgNoSchemes)
		return
	}
	s.Context.OfferedSchemes = offered
	out.text = i18n.Render(lang, i18n.MsgSchemeListIntro, strings.Join(names, ", "))
}

func (cs *conversationService) effectShowScheme(ctx context.Context, s *store.Session, cand intent.Candidate, before turnCheckpoint, lang i18n.Language, out *turnOutput) bool {
	id := cand.Slot(intent.SlotScheme)
	if id == "" {
		id = s.Context.ActiveSchemeID
	}
	if id == "" {
		var err error
		id, err = cs.resolver.ResolveScheme(s)
		if err != nil {
			cs.fallbackAmbiguous(ctx, s, before, lang, out)
			return false
		}
	}

	proj, err := cs.schemes.Get(ctx, id, lang)
	if err != nil {
		cs.fallbackError(s, before, lang, err, out)
		return false
	}

	s.Context.ActiveSchemeID = id
	s.Context.ActiveCategory = proj.Category
	s.Context.StepIndex = 0
	out.mentions = append(out.mentions, store.Mention{Kind: store.MentionScheme, Value: id})

	var b strings.Builder
	b.WriteString(i18n.Render(lang, i18n.MsgSchemeDetails, proj.Name, proj.Description))
	if proj.Deadline != nil {
		b.WriteString(" ")
		b.WriteString(i18n.Render(lang, i18n.MsgSchemeDeadline, proj.Deadline.Format("02 Jan 2006")))
	}
	if len(proj.Documents) > 0 {
		b.WriteString(" ")
		b.WriteString(i18n.Render(lang, i18n.MsgSchemeDocuments, strings.Join(proj.Documents, ", ")))
	}
	out.text = b.String()
	return true
}

func (cs *conversationService) effectAskNext(ctx context.Context, s *store.Session, before turnCheckpoint, lang i18n.Language, out *turnOutput) bool {
	snap, err := cs.schemes.Snapshot(ctx, s.Context.ActiveSchemeID)
	if err != nil {
		cs.fallbackError(s, before, lang, err, out)
		return false
	}

	res := cs.engine.Evaluate(snap.Criteria, s.Profile, lang)
	if !res.Complete {
		entering := s.Context.ActiveQuestion == ""
		s.Context.ActiveQuestion = res.NextField

		question := cs.renderQuestion(lang, res.NextField)
		if entering {
			question = i18n.Render(lang, i18n.MsgEligibilityIntro, snap.Name.In(lang)) + " " + question
		}
		out.text = question
		out.mentions = append(out.mentions, store.Mention{Kind: store.MentionProfileField, Value: res.NextField})
		return true
	}

	s.Context.ActiveQuestion = ""
	name := snap.Name.In(lang)
	if res.Eligible {
		out.text = i18n.Render(lang, i18n.MsgEligible, name, res.Explanation)
		return true
	}

	out.text = i18n.Render(lang, i18n.MsgIneligible, name, res.Explanation)
	alts := cs.engine.Alternatives(snap.Candidate(), s.Profile, cs.alternativeCandidates(snap.ID), eligibility.DefaultAlternativeLimit)
	if len(alts) > 0 {
		var names []string
		for _, alt := range alts {
			names = append(names, cs.schemeName(ctx, alt.ID, lang))
			out.mentions = append(out.mentions, store.Mention{Kind: store.MentionScheme, Value: alt.ID})
		}
		out.text += " " + i18n.Render(lang, i18n.MsgAlternatives, strings.Join(names, ", "))
	}
	return true
}

func (cs *conversationService) alternativeCandidates(excludeID string) []eligibility.Candidate {
	var candidates []eligibility.Candidate
	for _, snap := range cs.schemes.Cached() {
		if snap.ID == excludeID {
			continue
		}
		candidates = append(candidates, snap.Candidate())
	}
	return candidates
}

func (cs *conversationService) effectRecordAnswer(s *store.Session, cand intent.Candidate, lang i18n.Language, out *turnOutput) {
	field := cand.Slot(intent.SlotField)
	if field == "" {
		field = s.Context.ActiveQuestion
	}
	raw := cand.Slot(intent.SlotValue)
	if field == "" || raw == "" {
		out.text = i18n.Render(lang, i18n.MsgClarify)
		return
	}

	now := time.Now()
	var value store.FieldValue
	if num, ok := intent.ParseNumber(raw); ok {
		value = store.NumberValue(num, now)
	} else {
		value = store.TextValue(raw, now)
	}
	s.Profile.Merge(field, value)
	out.mentions = append(out.mentions, store.Mention{Kind: store.MentionProfileField, Value: field})
}

func (cs *conversationService) effectAdvanceStep(ctx context.Context, s *store.Session) {
	snap, err := cs.schemes.Snapshot(ctx, s.Context.ActiveSchemeID)
	if err != nil {
		return
	}
	if s.Context.StepIndex < len(snap.Steps) {
		s.Context.StepIndex++
	}
}

func (cs *conversationService) effectShowStep(ctx context.Context, s *store.Session, before turnCheckpoint, lang i18n.Language, out *turnOutput) bool {
	snap, err := cs.schemes.Snapshot(ctx, s.Context.ActiveSchemeID)
	if err != nil {
		cs.fallbackError(s, before, lang, err, out)
		return false
	}

	idx := s.Context.StepIndex
	if idx >= len(snap.Steps) {
		out.text = i18n.Render(lang, i18n.MsgApplicationDone)
		return true
	}

	step := i18n.Render(lang, i18n.MsgApplicationStep, idx+1, snap.Steps[idx].In(lang))
	if idx == 0 {
		step = i18n.Render(lang, i18n.MsgApplicationIntro, snap.Name.In(lang)) + " " + step
	}
	out.text = step
	out.mentions = append(out.mentions, store.Mention{Kind: store.MentionScheme, Value: snap.ID})
	return true
}

// fallbackAmbiguous rolls back to the pre-step position and asks the user to
// name the scheme instead of guessing one.
func (cs *conversationService) fallbackAmbiguous(ctx context.Context, s *store.Session, before turnCheckpoint, lang i18n.Language, out *turnOutput) {
	before.restore(s)
	out.errKind = apperror.KindAmbiguous

	example := ""
	if snaps := cs.schemes.Cached(); len(snaps) > 0 {
		example = snaps[0].Name.In(lang)
	}
	out.text = i18n.Render(lang, i18n.MsgAmbiguous, example)
}

// fallbackError turns an effect failure into an in-conversation error reply,
// rolling back to the pre-step position.
func (cs *conversationService) fallbackError(s *store.Session, before turnCheckpoint, lang i18n.Language, err error, out *turnOutput) {
	before.restore(s)
	kind := apperror.KindOf(err)
	out.errKind = kind

	key := i18n.MsgErrTransient
	if kind == apperror.KindNotFound {
		key = i18n.MsgErrNotFound
	}
	out.text = i18n.Render(lang, key)
}

// renderPrompt fills prompt-only transitions, supplying the scheme name for
// the templates that need one.
func (cs *conversationService) renderPrompt(ctx context.Context, s *store.Session, lang i18n.Language, prompt i18n.Key) string {
	switch prompt {
	case "":
		return i18n.Render(lang, i18n.MsgClarify)
	case i18n.MsgConfirmSubmit:
		return i18n.Render(lang, prompt, cs.schemeName(ctx, s.Context.ActiveSchemeID, lang))
	default:
		return i18n.Render(lang, prompt)
	}
}

func (cs *conversationService) renderQuestion(lang i18n.Language, field string) string {
	key := eligibility.NextQuestion(field)
	if key == i18n.MsgAskCustom {
		return i18n.Render(lang, key, field)
	}
	return i18n.Render(lang, key)
}

func (cs *conversationService) schemeName(ctx context.Context, id string, lang i18n.Language) string {
	if id == "" {
		return ""
	}
	snap, err := cs.schemes.Snapshot(ctx, id)
	if err != nil {
		return id
	}
	return snap.Name.In(lang)
}

// maybeSummarize emits the periodic recap once enough turns accumulated since
// the last one: the schemes discussed plus the profile facts noted so far.
func (cs *conversationService) maybeSummarize(s *store.Session) string {
	if s.TurnCount-s.SummarizedAt < summaryEvery {
		return ""
	}
	s.SummarizedAt = s.TurnCount

	lang := s.Language
	if lang == "" {
		lang = i18n.DefaultLanguage
	}

	seen := make(map[string]bool)
	var topics []string
	for _, turn := range s.History {
		for _, m := range turn.Mentions {
			if m.Kind == store.MentionScheme && !seen[m.Value] {
				seen[m.Value] = true
				topics = append(topics, m.Value)
			}
		}
	}
	if len(topics) == 0 {
		return ""
	}

	summary := i18n.Render(lang, i18n.MsgSummaryPrefix, strings.Join(topics, ", "))
	if len(s.Profile) > 0 {
		var facts []string
		for _, field := range store.PriorityFields() {
			if v, ok := s.Profile[field]; ok {
				facts = append(facts, fmt.Sprintf("%s=%s", field, fieldValueString(v)))
			}
		}
		if len(facts) > 0 {
			summary += i18n.Render(lang, i18n.MsgSummaryProfile, strings.Join(facts, ", "))
		}
	}
	return summary
}

func fieldValueString(v store.FieldValue) string {
	if v.Kind == store.FieldNumber {
		return fmt.Sprintf("%g", v.Num)
	}
	return v.Str
}

// suggestionsFor renders the quick-reply chips for the session's state.
func suggestionsFor(s *store.Session) []string {
	lang := s.Language
	if lang == "" {
		lang = i18n.DefaultLanguage
	}

	var keys []i18n.Key
	switch s.State {
	case store.StateLanguageSelection:
		keys = []i18n.Key{i18n.SugEnglish, i18n.SugHindi}
	case store.StateMainMenu:
		keys = []i18n.Key{i18n.SugBrowse, i18n.SugEligibility, i18n.SugApply, i18n.SugHelp}
	case store.StateSchemeBrowsing:
		keys = []i18n.Key{i18n.SugEligibility, i18n.SugGoBack, i18n.SugMainMenu}
	case store.StateSchemeDetails:
		keys = []i18n.Key{i18n.SugEligibility, i18n.SugApply, i18n.SugGoBack}
	case store.StateEligibilityCheck:
		keys = []i18n.Key{i18n.SugGoBack, i18n.SugMainMenu}
	case store.StateApplicationGuide:
		keys = []i18n.Key{i18n.SugYes, i18n.SugGoBack, i18n.SugMainMenu}
	case store.StateConfirmation:
		keys = []i18n.Key{i18n.SugYes, i18n.SugNo}
	default:
		return nil
	}

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, i18n.Render(lang, k))
	}
	return out
}

package analysis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/supplesafe-backend/internal/clients/gcp"
	"github.com/yungbote/supplesafe-backend/internal/domain"
	"github.com/yungbote/supplesafe-backend/internal/modules/extraction"
	svcerr "github.com/yungbote/supplesafe-backend/internal/pkg/errors"
	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
)

type State string

const (
	StateIdle        State = "idle"
	StateImageStaged State = "image_staged"
	StateAnalyzing   State = "analyzing"
	StateReported    State = "reported"
)

const DefaultMaxImageBytes = 10 << 20

type Extractor interface {
	Configured() bool
	ExtractIngredients(ctx context.Context, img extraction.Image) ([]string, error)
}

type Evaluator interface {
	Evaluate(ingredients []string, meds []domain.Medication) domain.Report
}

type HistoryRecorder interface {
	Record(ctx context.Context, sess *domain.Session, rec *domain.HistoryRecord) (*domain.HistoryRecord, error)
}

type LabelArchive interface {
	Put(ctx context.Context, key string, contentType string, data []byte) error
}

type Deps struct {
	Log       *logger.Logger
	Extractor Extractor
	Evaluator Evaluator
	History   HistoryRecorder
	// Optional.
	Archive       LabelArchive
	MaxImageBytes int
	Now           func() time.Time
}

type ImageInfo struct {
	MimeType  string    `json:"mime_type"`
	Extension string    `json:"extension"`
	Size      int       `json:"size"`
	StagedAt  time.Time `json:"staged_at"`
}

// Snapshot is the observable state of a controller at one instant.
type Snapshot struct {
	State State `json:"state"`
	// Ready is true when a check would start a run; NotReadyReason says why not.
	Ready          bool       `json:"ready"`
	NotReadyReason string     `json:"not_ready_reason,omitempty"`
	Image          *ImageInfo `json:"image,omitempty"`
	// AnalyzedImage is the image the current report came from. It differs from Image
	// when a new label was staged while the run was in flight.
	AnalyzedImage *ImageInfo     `json:"analyzed_image,omitempty"`
	Ingredients   []string       `json:"ingredients"`
	Report        *domain.Report `json:"report,omitempty"`
	Banner        domain.Banner  `json:"banner,omitempty"`
	LastError     string         `json:"last_error,omitempty"`
	HistoryID     *uuid.UUID     `json:"history_id,omitempty"`
	HistoryError  string         `json:"history_error,omitempty"`
}

type stagedImage struct {
	data []byte
	info ImageInfo
}

// Controller drives one analysis at a time for a single client.
type Controller struct {
	log  *logger.Logger
	deps Deps

	mu          sync.Mutex
	state       State
	image       *stagedImage
	ingredients []string
	report      *domain.Report
	analyzed    *ImageInfo
	lastErr     string
	historyID   *uuid.UUID
	historyErr  string
	// epoch advances on every reset; results from an older epoch are dropped.
	epoch uint64
}

func NewController(deps Deps) *Controller {
	if deps.Log == nil {
		deps.Log = logger.NewNop()
	}
	if deps.MaxImageBytes <= 0 {
		deps.MaxImageBytes = DefaultMaxImageBytes
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Controller{
		log:   deps.Log.With("service", "AnalysisController"),
		deps:  deps,
		state: StateIdle,
	}
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// StageImage replaces the staged label photo. Outside of Analyzing it also drops any
// previous ingredients and report. During Analyzing the running analysis keeps the
// image it started with.
func (c *Controller) StageImage(data []byte) (Snapshot, error) {
	if len(data) == 0 {
		return c.Snapshot(), fmt.Errorf("%w: image is empty", svcerr.ErrValidation)
	}
	if len(data) > c.deps.MaxImageBytes {
		return c.Snapshot(), fmt.Errorf("%w: image exceeds %d bytes", svcerr.ErrValidation, c.deps.MaxImageBytes)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return c.Snapshot(), fmt.Errorf("%w: unsupported image type %s", svcerr.ErrValidation, mt.String())
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	img := &stagedImage{
		data: buf,
		info: ImageInfo{
			MimeType:  mt.String(),
			Extension: mt.Extension(),
			Size:      len(buf),
			StagedAt:  c.deps.Now().UTC(),
		},
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.image = img
	if c.state != StateAnalyzing {
		c.clearResultsLocked()
		c.state = StateImageStaged
	}
	c.log.Debug("label image staged", "mime_type", img.info.MimeType, "image_bytes", len(buf), "state", string(c.state))
	return c.snapshotLocked(), nil
}

// Reset returns to Idle from any state. A running analysis finishes but its result is dropped.
func (c *Controller) Reset() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.image = nil
	c.clearResultsLocked()
	c.state = StateIdle
	return c.snapshotLocked()
}

// Analyze runs extraction, evaluation and, for a present session, history persistence in
// that order. started is false, with no error and no state change, when another analysis
// already holds the controller, no image is staged, or the extractor is unconfigured.
func (c *Controller) Analyze(ctx context.Context, sess *domain.Session, meds []domain.Medication) (snap Snapshot, started bool, err error) {
	c.mu.Lock()
	if reason := c.notReadyLocked(); reason != "" {
		snap = c.snapshotLocked()
		c.mu.Unlock()
		c.log.Debug("analysis trigger ignored", "reason", reason)
		return snap, false, nil
	}
	img := c.image
	epoch := c.epoch
	c.clearResultsLocked()
	c.state = StateAnalyzing
	c.mu.Unlock()

	medsCopy := make([]domain.Medication, len(meds))
	copy(medsCopy, meds)

	ctx, span := otel.Tracer("supplesafe/analysis").Start(ctx, "analysis.Analyze")
	defer span.End()
	span.SetAttributes(
		attribute.Bool("session.present", sess.Authenticated()),
		attribute.Int("medications.count", len(medsCopy)),
	)

	ingredients, err := c.deps.Extractor.ExtractIngredients(ctx, extraction.Image{
		Bytes:    img.data,
		MimeType: img.info.MimeType,
	})
	if err != nil {
		span.RecordError(err)
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch != epoch {
			c.log.Debug("discarding failed analysis after reset")
			return c.snapshotLocked(), true, nil
		}
		c.state = StateImageStaged
		c.lastErr = err.Error()
		c.log.Warn("analysis failed", "error", err)
		return c.snapshotLocked(), true, err
	}

	report := c.deps.Evaluator.Evaluate(ingredients, medsCopy)
	span.SetAttributes(
		attribute.Int("ingredients.count", len(ingredients)),
		attribute.Int("findings.major", len(report.Major)),
		attribute.Int("findings.moderate", len(report.Moderate)),
	)

	if c.stale(epoch) {
		c.log.Debug("discarding analysis result after reset")
		return c.Snapshot(), true, nil
	}

	// The controller stays in Analyzing until history is written so a second
	// trigger cannot start a run that records twice.
	var (
		historyID  *uuid.UUID
		historyErr string
	)
	if sess.Authenticated() && c.deps.History != nil {
		saved, herr := c.recordHistory(ctx, sess, img, ingredients, medsCopy)
		if herr != nil {
			span.RecordError(herr)
			historyErr = herr.Error()
		} else if saved != nil {
			id := saved.ID
			historyID = &id
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		c.log.Debug("discarding analysis result after reset")
		return c.snapshotLocked(), true, nil
	}
	c.ingredients = ingredients
	c.report = &report
	analyzed := img.info
	c.analyzed = &analyzed
	c.historyID = historyID
	c.historyErr = historyErr
	c.state = StateReported
	return c.snapshotLocked(), true, nil
}

func (c *Controller) stale(epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch != epoch
}

func (c *Controller) recordHistory(ctx context.Context, sess *domain.Session, img *stagedImage, ingredients []string, meds []domain.Medication) (*domain.HistoryRecord, error) {
	rec := &domain.HistoryRecord{
		UserID:             sess.UserID,
		SupplementName:     domain.SupplementLabel(ingredients),
		AnalysisResult:     domain.HistorySummary(len(ingredients), meds),
		Ingredients:        append([]string{}, ingredients...),
		CheckedMedications: domain.MedicationNames(meds),
	}

	if c.deps.Archive != nil {
		key := gcp.LabelKey(sess.UserID, img.info.Extension)
		if err := c.deps.Archive.Put(ctx, key, img.info.MimeType, img.data); err != nil {
			c.log.Warn("label archive failed", "error", err, "user_id", sess.UserID)
		} else {
			rec.LabelImageKey = key
		}
	}

	saved, err := c.deps.History.Record(ctx, sess, rec)
	if err != nil {
		c.log.Error("history write failed", "error", err, "user_id", sess.UserID)
		return nil, err
	}
	return saved, nil
}

// notReadyLocked returns why a check cannot start now, or "" when it can.
func (c *Controller) notReadyLocked() string {
	switch {
	case c.state == StateAnalyzing:
		return "analysis in progress"
	case c.image == nil:
		return "no label image staged"
	case c.deps.Extractor == nil || !c.deps.Extractor.Configured():
		return "extraction service is not configured"
	}
	return ""
}

func (c *Controller) clearResultsLocked() {
	c.ingredients = nil
	c.report = nil
	c.analyzed = nil
	c.lastErr = ""
	c.historyID = nil
	c.historyErr = ""
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		State:        c.state,
		Ingredients:  append([]string{}, c.ingredients...),
		LastError:    c.lastErr,
		HistoryError: c.historyErr,
	}
	s.NotReadyReason = c.notReadyLocked()
	s.Ready = s.NotReadyReason == ""
	if c.image != nil {
		info := c.image.info
		s.Image = &info
	}
	if c.analyzed != nil {
		info := *c.analyzed
		s.AnalyzedImage = &info
	}
	if c.report != nil {
		r := *c.report
		s.Report = &r
		s.Banner = r.Banner()
	}
	if c.historyID != nil {
		id := *c.historyID
		s.HistoryID = &id
	}
	return s
}


// Package orchestrator runs one chat turn end to end: it resumes or
// starts a slot-filling conversation, runs the evaluator pipeline once
// the context is complete, decides a recommendation from the rule table,
// and hands phrasing to the language adapter. It is the only component
// that touches conversation state.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sweetpotato0/agriadvisor/conversation"
	"github.com/sweetpotato0/agriadvisor/cropdata"
	agrierrors "github.com/sweetpotato0/agriadvisor/errors"
	"github.com/sweetpotato0/agriadvisor/evaluator/stage"
	"github.com/sweetpotato0/agriadvisor/evaluator/weatherimpact"
	"github.com/sweetpotato0/agriadvisor/farm"
	"github.com/sweetpotato0/agriadvisor/intents"
	"github.com/sweetpotato0/agriadvisor/llm"
	"github.com/sweetpotato0/agriadvisor/pkg/logging"
	"github.com/sweetpotato0/agriadvisor/pkg/telemetry"
)

// TurnRequest is one incoming farmer message.
type TurnRequest struct {
	FarmerID string `json:"farmer_id"`
	Message  string `json:"message"`
	Image    []byte `json:"image,omitempty"`
	Language string `json:"language,omitempty"` // optional override
}

// TurnResponse is the reply to one turn. Question-only turns carry
// data_sources=["orchestrator"] and a reasoning naming the field.
type TurnResponse struct {
	Response    string   `json:"response"`
	Confidence  float64  `json:"confidence"`
	Reasoning   string   `json:"reasoning"`
	DataSources []string `json:"data_sources"`
	Alerts      []string `json:"alerts,omitempty"`
}

// Orchestrator wires the stores, evaluators, and language adapter into
// the turn state machine. It holds no per-farmer state of its own.
type Orchestrator struct {
	farms   farm.Store
	convs   conversation.Store
	weather *weatherimpact.Evaluator
	stages  *stage.Evaluator
	model   *llm.Adapter
	now     func() time.Time
}

// New creates an orchestrator.
func New(farms farm.Store, convs conversation.Store, weather *weatherimpact.Evaluator, stages *stage.Evaluator, model *llm.Adapter) *Orchestrator {
	return &Orchestrator{
		farms:   farms,
		convs:   convs,
		weather: weather,
		stages:  stages,
		model:   model,
		now:     time.Now,
	}
}

// HandleTurn processes one farmer message. The only errors returned are
// for unusable requests or an unknown farmer; everything downstream
// degrades into a normal response.
func (o *Orchestrator) HandleTurn(ctx context.Context, req *TurnRequest) (*TurnResponse, error) {
	if req == nil || req.FarmerID == "" {
		return nil, fmt.Errorf("farmer id required: %w", agrierrors.ErrInvalidInput)
	}
	if req.Message == "" && len(req.Image) == 0 {
		return nil, fmt.Errorf("message or image required: %w", agrierrors.ErrInvalidInput)
	}

	ctx, span := telemetry.Tracer("orchestrator").Start(ctx, "orchestrator.turn",
		trace.WithAttributes(attribute.String("farmer.id", req.FarmerID)))
	var err error
	defer func() { telemetry.End(span, err) }()

	snap, err := farm.Load(ctx, o.farms, req.FarmerID)
	if err != nil {
		return nil, fmt.Errorf("load farmer context: %w", err)
	}

	language := req.Language
	if language == "" {
		language = snap.Farmer.Language
	}
	if language == "" {
		language = conversation.DefaultLanguage
	}

	now := o.now()
	state, rerr := conversation.Read(ctx, o.convs, req.FarmerID, now)
	if rerr != nil {
		logging.WithComponent("orchestrator").Warn("conversation read failed, starting fresh",
			"farmer_id", req.FarmerID, "error", rerr)
		state = nil
	}

	if state != nil {
		return o.resumeTurn(ctx, snap, state, req, language, now), nil
	}
	return o.freshTurn(ctx, snap, req, language, now), nil
}

// freshTurn classifies the message and either answers directly, asks the
// first missing question, or runs the pipeline.
func (o *Orchestrator) freshTurn(ctx context.Context, snap *farm.ContextSnapshot, req *TurnRequest, language string, now time.Time) *TurnResponse {
	result := o.model.ClassifyIntent(ctx, req.Message, language)
	logging.WithComponent("orchestrator").Debug("intent classified",
		"farmer_id", req.FarmerID, "intent", result.Intent, "origin", result.Origin)

	if result.Intent == intents.Greeting {
		return &TurnResponse{
			Response:    conversation.Greeting(language),
			Confidence:  result.Confidence,
			Reasoning:   "Intent: greeting | Stage: N/A | Risk: N/A",
			DataSources: []string{"orchestrator"},
		}
	}

	collected := seedFromEntities(result.Entities)
	missing := conversation.MissingFields(intents.RequiredFields(result.Intent), snap, collected)
	if len(missing) > 0 {
		state := &conversation.State{
			FarmerID:             req.FarmerID,
			PendingIntent:        result.Intent,
			Collected:            collected,
			MissingFields:        missing,
			CurrentQuestionField: missing[0],
			UpdatedAt:            now,
		}
		if err := o.convs.Save(ctx, state); err != nil {
			logging.WithComponent("orchestrator").Error("conversation save failed",
				"farmer_id", req.FarmerID, "error", err)
		}
		return questionResponse(missing[0], language, "", result.Confidence)
	}

	return o.runPipeline(ctx, snap, result.Intent, collected, language)
}

// resumeTurn treats the message as the answer to the pending question.
// Extraction failure re-asks the same question and leaves state alone.
func (o *Orchestrator) resumeTurn(ctx context.Context, snap *farm.ContextSnapshot, state *conversation.State, req *TurnRequest, language string, now time.Time) *TurnResponse {
	field := state.CurrentQuestionField
	logger := logging.WithComponent("orchestrator")

	value, err := o.answerFor(ctx, field, req, language)
	if err != nil {
		logger.Debug("field extraction failed, re-asking",
			"farmer_id", req.FarmerID, "field", field, "error", err)
		return questionResponse(field, language, conversation.Clarification(language), 0.9)
	}

	if state.Collected == nil {
		state.Collected = make(map[string]string)
	}
	state.Collected[field] = value

	missing := conversation.MissingFields(intents.RequiredFields(state.PendingIntent), snap, state.Collected)
	state.MissingFields = missing

	if len(missing) > 0 {
		state.CurrentQuestionField = missing[0]
		state.UpdatedAt = now
		if err := o.convs.Save(ctx, state); err != nil {
			// The stored record still points at the previous field, so
			// the question must match it or the next answer binds to the
			// wrong slot.
			logger.Error("conversation save failed, re-asking pending field",
				"farmer_id", req.FarmerID, "field", field, "error", err)
			return questionResponse(field, language, "", 0.9)
		}
		return questionResponse(missing[0], language, "", 0.9)
	}

	o.completeConversation(ctx, snap, state)
	return o.runPipeline(ctx, snap, state.PendingIntent, state.Collected, language)
}

// answerFor extracts the pending field's value from the message, or from
// an attached photo when the question asked for symptoms.
func (o *Orchestrator) answerFor(ctx context.Context, field string, req *TurnRequest, language string) (string, error) {
	if field == intents.FieldSymptomDescription && len(req.Image) > 0 {
		if r := o.model.DescribeImage(ctx, req.Image, language); r.Origin == llm.OriginPrimary {
			return r.Text, nil
		}
	}
	value, _, err := o.model.ExtractField(ctx, field, req.Message, language)
	return value, err
}

// completeConversation clears the pending state and applies the crop
// registration side effect. A failed clear rolls the registration back
// so the farmer is re-asked rather than left with a phantom crop.
func (o *Orchestrator) completeConversation(ctx context.Context, snap *farm.ContextSnapshot, state *conversation.State) {
	logger := logging.WithComponent("orchestrator")

	cropID := ""
	cropType := state.Collected[intents.FieldCropType]
	sowing, perr := time.Parse("2006-01-02", state.Collected[intents.FieldSowingDate])
	if cropType != "" && perr == nil && !snap.HasActiveCrop {
		id, err := o.farms.RegisterCrop(ctx, &farm.Crop{
			FarmerID:   state.FarmerID,
			CropType:   cropdata.Normalize(cropType),
			SowingDate: sowing,
			IsActive:   true,
		})
		if err != nil {
			logger.Error("crop registration failed", "farmer_id", state.FarmerID, "error", err)
		} else {
			cropID = id
			logger.Info("crop registered from conversation",
				"farmer_id", state.FarmerID, "crop_id", id, "crop_type", cropType)
		}
	}

	if err := o.convs.Delete(ctx, state.FarmerID); err != nil {
		logger.Error("conversation clear failed", "farmer_id", state.FarmerID, "error", err)
		if cropID != "" {
			if rerr := o.farms.RemoveCrop(ctx, cropID); rerr != nil {
				logger.Error("crop registration rollback failed", "crop_id", cropID, "error", rerr)
			}
		}
	}
}

// seedFromEntities pre-fills collected context from classifier entities.
// Only values that already match the stored formats are trusted.
func seedFromEntities(entities map[string]string) map[string]string {
	collected := make(map[string]string)
	if crop := entities["crop"]; crop != "" {
		collected[intents.FieldCropType] = cropdata.Normalize(crop)
	}
	if date := entities["date"]; date != "" {
		if _, err := time.Parse("2006-01-02", date); err == nil {
			collected[intents.FieldSowingDate] = date
		}
	}
	return collected
}

func questionResponse(field, language, prefix string, confidence float64) *TurnResponse {
	return &TurnResponse{
		Response:    prefix + conversation.Question(field, language),
		Confidence:  confidence,
		Reasoning:   fmt.Sprintf("Collecting required field: %s", field),
		DataSources: []string{"orchestrator"},
	}
}

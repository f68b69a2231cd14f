package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"shipment-dispatch-service/internal/domain"
	"shipment-dispatch-service/internal/platform/obs"
	"shipment-dispatch-service/internal/prompts"
)

// MaxAttempts bounds proposer calls in one negotiation run.
const MaxAttempts = 10

// NegotiationState is a step of the propose/validate/finalize state machine.
type NegotiationState string

const (
	StateProposing  NegotiationState = "proposing"
	StateValidating NegotiationState = "validating"
	StateFinalizing NegotiationState = "finalizing"
	StateCommitted  NegotiationState = "committed"
	StateExhausted  NegotiationState = "exhausted"
	StateFatal      NegotiationState = "fatal"
)

// NegotiationResult is the terminal outcome of a run. Plan is set only when
// State is StateCommitted.
type NegotiationResult struct {
	State       NegotiationState
	Plan        domain.Plan
	Attempts    int
	Assignments []domain.Assignment
}

type proposalInput struct {
	Trucks          []TruckRecord    `json:"trucks"`
	Shipments       []ShipmentRecord `json:"shipments"`
	PreviousFailure string           `json:"previous_failure"`
}

type validationInput struct {
	Trucks       []TruckRecord    `json:"trucks"`
	Shipments    []ShipmentRecord `json:"shipments"`
	ProposedPlan domain.Plan      `json:"proposed_plan"`
}

type attemptTag int

const (
	attemptRejected attemptTag = iota
	attemptValidated
)

// attemptResult is what one propose/validate round hands back to the loop.
// A rejected attempt carries the feedback for the next proposal.
type attemptResult struct {
	tag      attemptTag
	plan     domain.Plan
	feedback string
}

func rejected(feedback string) attemptResult {
	return attemptResult{tag: attemptRejected, feedback: feedback}
}

// Negotiator drives proposer -> validator rounds until a plan validates or
// MaxAttempts is spent, then finalizes and commits the plan.
type Negotiator struct {
	oracle    *OracleClient
	committer *Committer
	logger    *zap.Logger
}

func NewNegotiator(oracle *OracleClient, committer *Committer, logger *zap.Logger) *Negotiator {
	return &Negotiator{oracle: oracle, committer: committer, logger: obs.OrNop(logger)}
}

// Negotiate runs the loop over snap. Exhaustion is a result, not an error.
// Errors are fatal for the run: oracle transport failures (domain.ErrOracleUnavailable),
// an unusable finalizer reply (domain.ErrFinalizeFailed) and commit failures.
func (n *Negotiator) Negotiate(ctx context.Context, snap *Snapshot) (_ NegotiationResult, err error) {
	ctx, done := obs.Start(ctx, "negotiation.Run")
	defer done(&err)

	log := n.logger.With(zap.String("req_id", obs.RequestID(ctx)))
	feedback := ""

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		log.Info("negotiation attempt", zap.Int("attempt", attempt), zap.String("state", string(StateProposing)))

		res, err := n.attempt(ctx, snap, feedback, log)
		if err != nil {
			return NegotiationResult{State: StateFatal, Attempts: attempt}, fmt.Errorf("negotiate: attempt %d: %w", attempt, err)
		}

		if res.tag == attemptRejected {
			log.Info("plan rejected", zap.Int("attempt", attempt), zap.String("feedback", res.feedback))
			feedback = res.feedback
			continue
		}

		log.Info("plan validated", zap.Int("attempt", attempt), zap.String("state", string(StateFinalizing)))
		final, err := n.finalize(ctx, res.plan)
		if err != nil {
			return NegotiationResult{State: StateFatal, Attempts: attempt}, fmt.Errorf("negotiate: %w", err)
		}

		assignments, err := n.committer.Commit(ctx, final, snap.TrucksByNumber, snap.ShipmentsByID)
		if err != nil {
			return NegotiationResult{State: StateFatal, Attempts: attempt}, fmt.Errorf("negotiate: %w", err)
		}

		obs.SpanFromContext(ctx).SetAttributes(attribute.Int("negotiation.attempts", attempt))
		log.Info("plan committed", zap.Int("attempt", attempt), zap.Int("assignments", len(assignments)))
		return NegotiationResult{
			State:       StateCommitted,
			Plan:        final,
			Attempts:    attempt,
			Assignments: assignments,
		}, nil
	}

	obs.SpanFromContext(ctx).SetAttributes(attribute.Int("negotiation.attempts", MaxAttempts))
	log.Warn("no valid route plan found", zap.Int("attempts", MaxAttempts))
	return NegotiationResult{State: StateExhausted, Attempts: MaxAttempts}, nil
}

// attempt runs one proposer/validator round. Malformed replies and failed
// checks come back as rejected results; only transport failures are errors.
func (n *Negotiator) attempt(ctx context.Context, snap *Snapshot, feedback string, log *zap.Logger) (attemptResult, error) {
	raw, err := n.oracle.Invoke(ctx, prompts.RoleProposer, proposalInput{
		Trucks:          snap.Trucks,
		Shipments:       snap.Shipments,
		PreviousFailure: feedback,
	})
	if err != nil {
		return attemptResult{}, err
	}

	plan, err := ExtractPlan(raw)
	if err != nil {
		log.Warn("unparseable proposer reply", zap.Error(err))
		return rejected("Failed to generate a valid JSON. Response was: " + raw), nil
	}

	raw, err = n.oracle.Invoke(ctx, prompts.RoleValidator, validationInput{
		Trucks:       snap.Trucks,
		Shipments:    snap.Shipments,
		ProposedPlan: plan,
	})
	if err != nil {
		return attemptResult{}, err
	}

	verdict, err := ExtractVerdict(raw)
	if err != nil {
		log.Warn("unparseable validator reply", zap.Error(err), zap.String("raw", raw))
		return rejected("Validator failed to provide a valid JSON. Raw response: " + raw), nil
	}

	if !verdict.Validated() {
		return rejected(verdict.Feedback()), nil
	}

	// The validator is itself an oracle; recompute before trusting it.
	if err := plan.Check(snap.TrucksByNumber, snap.ShipmentsByID); err != nil {
		log.Warn("validated plan failed local check", zap.Error(err))
		return rejected(checkFeedback(err)), nil
	}

	return attemptResult{tag: attemptValidated, plan: plan}, nil
}

// finalize asks the finalizer to confirm plan. Anything but the same plan back is fatal.
func (n *Negotiator) finalize(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	raw, err := n.oracle.Invoke(ctx, prompts.RoleFinalizer, plan)
	if err != nil {
		return nil, fmt.Errorf("finalize: %w", err)
	}

	final, err := ExtractPlan(raw)
	if err != nil {
		return nil, fmt.Errorf("finalize: %w: %w", domain.ErrFinalizeFailed, err)
	}

	if !final.SameAssignments(plan) {
		return nil, fmt.Errorf("finalize: finalizer changed the validated plan: %w", domain.ErrFinalizeFailed)
	}

	return final, nil
}

func checkFeedback(err error) string {
	var ce *domain.CapacityError
	if errors.As(err, &ce) {
		return domain.CapacityFeedback(ce.TruckNumber, string(ce.Dimension))
	}

	var de *domain.DuplicateShipmentError
	if errors.As(err, &de) {
		return fmt.Sprintf(
			"Plan validation failed. Reason: shipment %s is assigned to more than one truck (%s). Assign each shipment to at most one truck.",
			de.ShipmentID, strings.Join(de.Trucks, ", "),
		)
	}

	return "Plan validation failed. Reason: " + err.Error()
}

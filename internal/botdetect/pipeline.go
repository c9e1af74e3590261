package botdetect

import (
	"fmt"

	"go.uber.org/zap"

	"solana-wallet-profiler/internal/domain"
)

// State is the collection state of one wallet run.
type State int

const (
	// StateCollecting accepts further transactions.
	StateCollecting State = iota
	// StateEarlyStopped is terminal: the early score crossed the bot
	// threshold and collection halted.
	StateEarlyStopped
	// StateCompleted is terminal: the full window was collected and scored.
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateCollecting:
		return "collecting"
	case StateEarlyStopped:
		return "early_stopped"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Pipeline accumulates a wallet's transaction window and scores it. One
// Pipeline serves one wallet run; it is not safe for concurrent use.
//
// A nil classifier puts the pipeline in degraded mode: every score is 0 and
// early detection never triggers, but the run itself proceeds.
type Pipeline struct {
	classifier Classifier
	threshold  float64
	earlyCount int
	log        *zap.Logger

	state       State
	window      []*domain.RawTransaction
	probability float64
}

// NewPipeline creates a pipeline in the Collecting state.
func NewPipeline(classifier Classifier, threshold float64, earlyCount int, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		classifier: classifier,
		threshold:  threshold,
		earlyCount: earlyCount,
		log:        log,
	}
}

// Add appends a transaction to the window. On reaching the early-detection
// count the window is scored; a score at or above the bot threshold moves the
// pipeline to EarlyStopped and Add reports halted=true. Adding to a terminal
// state is ignored.
func (p *Pipeline) Add(tx *domain.RawTransaction) (halted bool, err error) {
	if p.state != StateCollecting {
		return true, nil
	}
	p.window = append(p.window, tx)

	if len(p.window) != p.earlyCount {
		return false, nil
	}

	score, err := p.score()
	if err != nil {
		return false, fmt.Errorf("early detection scoring: %w", err)
	}
	if score >= p.threshold {
		p.state = StateEarlyStopped
		p.probability = score
		p.log.Info("early bot detection triggered",
			zap.Float64("probability", score),
			zap.Int("transactions", len(p.window)))
		return true, nil
	}
	return false, nil
}

// Finish computes the final probability. EarlyStopped keeps the early score;
// otherwise the full window is scored and the pipeline moves to Completed.
func (p *Pipeline) Finish() (float64, error) {
	if p.state == StateEarlyStopped {
		return p.probability, nil
	}
	score, err := p.score()
	if err != nil {
		return 0, fmt.Errorf("final scoring: %w", err)
	}
	p.state = StateCompleted
	p.probability = score
	return score, nil
}

func (p *Pipeline) score() (float64, error) {
	// No transactions means no behavioral signal; scoring an all-zero
	// feature vector would report the model's bias instead.
	if p.classifier == nil || len(p.window) == 0 {
		return 0, nil
	}
	fv, err := BuildVector(ExtractFeatures(p.window))
	if err != nil {
		return 0, err
	}
	return p.classifier.Score(fv)
}

// State returns the current collection state.
func (p *Pipeline) State() State { return p.state }

// WindowSize returns the number of transactions collected so far.
func (p *Pipeline) WindowSize() int { return len(p.window) }

// Window returns the collected transactions in fetch order.
func (p *Pipeline) Window() []*domain.RawTransaction { return p.window }

// EarlyStopped reports whether early detection halted collection.
func (p *Pipeline) EarlyStopped() bool { return p.state == StateEarlyStopped }

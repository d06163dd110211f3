package resolve

import (
	"log/slog"

	"shelves/internal/logging"
	"shelves/internal/shelf"
)

// Pipeline resolves files to shelves. It is safe for concurrent use; the
// registry is its only shared mutable state.
type Pipeline struct {
	registry   *shelf.Registry
	classifier *shelf.Classifier
	logger     *slog.Logger
}

// NewPipeline wires a pipeline over registry using classifier.
func NewPipeline(registry *shelf.Registry, classifier *shelf.Classifier, logger *slog.Logger) *Pipeline {
	if classifier == nil {
		classifier = shelf.NewClassifier(shelf.DefaultPolicy())
	}
	return &Pipeline{
		registry:   registry,
		classifier: classifier,
		logger:     logging.NewComponentLogger(logger, "resolver"),
	}
}

// Registry returns the registry the pipeline learns into.
func (p *Pipeline) Registry() *shelf.Registry { return p.registry }

// Classifier returns the classifier in use.
func (p *Pipeline) Classifier() *shelf.Classifier { return p.classifier }

// ResolveForFile returns the shelf for filePath and the verdict behind it.
// Without a release identifier nothing is assigned: the shelf is "" and the
// verdict is the zero Verdict.
func (p *Pipeline) ResolveForFile(filePath, libraryRoot string, hasAlbumID bool) (string, shelf.Verdict) {
	return p.ResolveForFileWith(p.logger, filePath, libraryRoot, hasAlbumID)
}

// ResolveForFileWith is ResolveForFile logging through logger, which callers
// use to attach correlation fields.
func (p *Pipeline) ResolveForFileWith(logger *slog.Logger, filePath, libraryRoot string, hasAlbumID bool) (string, shelf.Verdict) {
	if !hasAlbumID {
		logger.Debug("no release identifier; shelf left unset", logging.String(logging.FieldPath, filePath))
		return "", shelf.Verdict{}
	}
	return p.resolve(logger, filePath, libraryRoot)
}

// DetermineShelfFromStorageLocation re-derives the shelf from the current
// path alone. It ignores any stored shelf tag, so files moved on disk are
// re-homed on the next scan.
func (p *Pipeline) DetermineShelfFromStorageLocation(filePath, libraryRoot string) (string, shelf.Verdict) {
	return p.resolve(p.logger, filePath, libraryRoot)
}

func (p *Pipeline) resolve(logger *slog.Logger, filePath, libraryRoot string) (string, shelf.Verdict) {
	if logger == nil {
		logger = p.logger
	}
	candidate := shelf.TopLevelSegment(filePath, libraryRoot)
	verdict := p.classifier.Classify(candidate, p.registry.Snapshot())

	switch verdict.Kind {
	case shelf.VerdictAcceptedNew:
		added, err := p.registry.Add(verdict.Shelf)
		if err != nil {
			verdict = shelf.Verdict{
				Kind:      shelf.VerdictRejectedSuspicious,
				Candidate: verdict.Candidate,
				Shelf:     p.registry.Default(),
				Heuristic: "registry_rejected",
				Reason:    err.Error(),
			}
			p.warnRejected(logger, filePath, verdict)
			break
		}
		if added {
			logger.Info("learned new shelf",
				logging.String(logging.FieldShelf, verdict.Shelf),
				logging.String(logging.FieldPath, filePath),
				logging.String(logging.FieldEventType, "shelf_learned"),
			)
		} else if canonical, ok := p.registry.Lookup(verdict.Shelf); ok {
			// Another worker registered it first, possibly with different casing.
			verdict.Shelf = canonical
		}
	case shelf.VerdictRejectedSuspicious:
		p.warnRejected(logger, filePath, verdict)
	}

	logger.Debug("resolved shelf",
		logging.String(logging.FieldPath, filePath),
		logging.String(logging.FieldShelf, verdict.Shelf),
		logging.String("verdict", verdict.Kind.String()),
	)
	return verdict.Shelf, verdict
}

func (p *Pipeline) warnRejected(logger *slog.Logger, filePath string, verdict shelf.Verdict) {
	logging.WarnWithContext(logger, "folder does not look like a shelf; using default", "shelf_rejected",
		logging.String(logging.FieldPath, filePath),
		logging.String("candidate", verdict.Candidate),
		logging.String("heuristic", verdict.Heuristic),
		logging.String("reason", verdict.Reason),
		logging.String(logging.FieldShelf, verdict.Shelf),
		logging.String(logging.FieldErrorHint, "add the folder as a shelf if it really is one"),
		logging.String(logging.FieldImpact, "file assigned to the default shelf"),
	)
}

package resolve

import (
	"context"
	"log/slog"

	"shelves/internal/logging"
	"shelves/internal/script"
	"shelves/internal/tags"
	"shelves/internal/workflow"
)

// Processor reacts to host file events for one library root.
type Processor struct {
	pipeline *Pipeline
	votes    *Votes
	engine   *workflow.Engine
	root     string
	logger   *slog.Logger
}

// NewProcessor binds pipeline, votes and engine to libraryRoot.
func NewProcessor(pipeline *Pipeline, votes *Votes, engine *workflow.Engine, libraryRoot string, logger *slog.Logger) *Processor {
	if votes == nil {
		votes = NewVotes(logger)
	}
	return &Processor{
		pipeline: pipeline,
		votes:    votes,
		engine:   engine,
		root:     libraryRoot,
		logger:   logging.NewComponentLogger(logger, "processor"),
	}
}

// Pipeline returns the underlying pipeline.
func (p *Processor) Pipeline() *Pipeline { return p.pipeline }

// Votes returns the album vote tally.
func (p *Processor) Votes() *Votes { return p.votes }

// Root returns the library root.
func (p *Processor) Root() string { return p.root }

// ProcessLoadedFile resolves the shelf of a scanned file, stores it in the
// shelf tag and votes for the file's album. A shelf tag marked as manual is
// kept and still votes. It returns the shelf now on the file, or "" when the
// file has no release identifier.
func (p *Processor) ProcessLoadedFile(ctx context.Context, filePath string, md tags.Store) string {
	logger := logging.WithContext(ctx, p.logger)
	albumID := tags.AlbumID(md)
	if albumID == "" {
		logger.Debug("file has no release identifier", logging.String(logging.FieldPath, filePath))
		return ""
	}

	if name, manual := tags.ParseShelfTag(md.GetTag(tags.KeyShelf)); manual && name != "" {
		logger.Debug("keeping manual shelf",
			logging.String(logging.FieldPath, filePath),
			logging.String(logging.FieldShelf, name),
		)
		p.votes.Cast(albumID, name)
		return name
	}

	assigned, _ := p.pipeline.ResolveForFileWith(logger, filePath, p.root, true)
	if assigned == "" {
		return ""
	}
	md.SetTag(tags.KeyShelf, assigned)
	p.votes.Cast(albumID, assigned)
	return assigned
}

// ProcessSavedFile forgets the votes of the saved file's album.
func (p *Processor) ProcessSavedFile(ctx context.Context, md tags.Store) {
	albumID := tags.AlbumID(md)
	if albumID == "" {
		return
	}
	p.votes.Clear(albumID)
	logging.WithContext(ctx, p.logger).Debug("cleared album votes", logging.String(logging.FieldAlbumID, albumID))
}

// ApplyAlbumShelf sets the shelf tag of md to its album's winning shelf and
// reports whether a winner existed. Manual shelf tags are left alone.
func (p *Processor) ApplyAlbumShelf(md tags.Store) (string, bool) {
	albumID := tags.AlbumID(md)
	if albumID == "" {
		return "", false
	}
	if name, manual := tags.ParseShelfTag(md.GetTag(tags.KeyShelf)); manual && name != "" {
		return name, true
	}
	winner, ok := p.votes.Winner(albumID)
	if !ok || winner == "" {
		p.logger.Debug("album shelf undecided", logging.String(logging.FieldAlbumID, albumID))
		return "", false
	}
	md.SetTag(tags.KeyShelf, winner)
	return winner, true
}

// EffectiveShelf is the shelf md will be saved under once the workflow
// transition is applied.
func (p *Processor) EffectiveShelf(md tags.Store) string {
	return script.Shelf(p.engine, md)
}

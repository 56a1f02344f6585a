package service

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"cloudbucket/internal/model"
	"cloudbucket/internal/registry"
	"cloudbucket/internal/storage"
)

// DefaultContentType is served when a record carries no content type.
const DefaultContentType = "application/octet-stream"

var (
	ErrOwnerRequired     = errors.New("owner is required")
	ErrIDRequired        = errors.New("id is required")
	ErrReaderNil         = errors.New("reader is nil")
	ErrEmptyUpload       = errors.New("upload is empty")
	ErrSizeLimitExceeded = errors.New("upload exceeds the size limit")
	ErrInvalidFilename   = errors.New("invalid filename")
	ErrFileNotFound      = errors.New("file not found")
	ErrForbidden         = errors.New("file belongs to another owner")
	ErrPersistence       = errors.New("file metadata storage unavailable")
)

var tracer = otel.Tracer("cloudbucket/internal/service")

// UploadInput carries one upload request. Size is the declared length, or -1 if unknown.
type UploadInput struct {
	Owner       string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// FileListItem is a listed record plus a human-readable size.
type FileListItem struct {
	model.StoredFile
	SizeHuman string `json:"size_human"`
}

// FileListResult is the service-level DTO for an owner's files.
type FileListResult struct {
	Items []FileListItem `json:"data"`
	Total int            `json:"total"`
}

// Download is a servable blob. The caller must close Body.
type Download struct {
	Body          io.ReadCloser
	ContentLength int64
	ContentType   string
	Filename      string
}

// FileService defines the use cases for handling stored files.
type FileService interface {
	// Upload validates the request, streams the body into the blob store while enforcing
	// the size ceiling, and records the result in the registry.
	Upload(ctx context.Context, in UploadInput) (*model.StoredFile, error)

	// List returns every file owned by owner.
	List(ctx context.Context, owner string) (*FileListResult, error)

	// Get returns the metadata of a file owned by owner.
	Get(ctx context.Context, owner, id string) (*model.StoredFile, error)

	// Download opens the content of a file owned by owner.
	Download(ctx context.Context, owner, id string) (*Download, error)
}

// Option configures a FileService.
type Option func(*fileService)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *fileService) { s.log = log }
}

// WithMetrics enables upload counters.
func WithMetrics(m *Metrics) Option {
	return func(s *fileService) { s.metrics = m }
}

type fileService struct {
	store    storage.Storage
	registry registry.Registry
	maxBytes int64
	log      *slog.Logger
	metrics  *Metrics
}

// NewFileService constructs a FileService. maxUploadBytes is the per-upload ceiling;
// 0 rejects every non-empty upload.
func NewFileService(store storage.Storage, reg registry.Registry, maxUploadBytes int64, opts ...Option) FileService {
	s := &fileService{
		store:    store,
		registry: reg,
		maxBytes: maxUploadBytes,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "file_service")
	return s
}

func (s *fileService) Upload(ctx context.Context, in UploadInput) (*model.StoredFile, error) {
	ctx, span := tracer.Start(ctx, "FileService.Upload", trace.WithAttributes(
		attribute.String("file.owner", in.Owner),
		attribute.Int64("file.declared_size", in.Size),
	))
	defer span.End()

	f, outcome, err := s.upload(ctx, in)
	var stored int64
	if f != nil {
		stored = f.Size
		span.SetAttributes(attribute.String("file.id", f.ID), attribute.Int64("file.size", f.Size))
	}
	s.metrics.observe(outcome, stored)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return nil, err
	}
	return f, nil
}

func (s *fileService) upload(ctx context.Context, in UploadInput) (*model.StoredFile, string, error) {
	if in.Owner == "" {
		return nil, outcomeFailed, ErrOwnerRequired
	}
	if in.Body == nil {
		return nil, outcomeFailed, ErrReaderNil
	}
	if in.Filename == "" || in.Size == 0 {
		return nil, outcomeEmpty, ErrEmptyUpload
	}
	if in.Size > s.maxBytes {
		s.log.WarnContext(ctx, "upload rejected",
			"owner", in.Owner,
			"reason", "declared size over limit",
			"declared_size", in.Size,
			"limit", humanize.IBytes(uint64(s.maxBytes)),
		)
		return nil, outcomeTooLarge, ErrSizeLimitExceeded
	}

	name, err := storage.CleanName(in.Filename)
	if err != nil {
		s.log.WarnContext(ctx, "upload rejected", "owner", in.Owner, "reason", "unsafe filename", "error", err.Error())
		return nil, outcomeInvalidFilename, ErrInvalidFilename
	}

	br := bufio.NewReader(in.Body)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, outcomeEmpty, ErrEmptyUpload
		}
		return nil, outcomeFailed, fmt.Errorf("read upload: %w", err)
	}

	body := &limitedReader{r: br, remaining: s.maxBytes}
	info, err := s.store.Put(ctx, blobName(in.Owner, name), body, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
	})
	if err != nil {
		switch {
		case body.exceeded || errors.Is(err, ErrSizeLimitExceeded):
			s.log.WarnContext(ctx, "upload rejected",
				"owner", in.Owner,
				"reason", "stream over limit",
				"limit", humanize.IBytes(uint64(s.maxBytes)),
			)
			return nil, outcomeTooLarge, ErrSizeLimitExceeded
		case errors.Is(err, storage.ErrUnsafePath):
			s.log.WarnContext(ctx, "upload rejected",
				"owner", in.Owner,
				"reason", "unsafe filename",
				"error", err.Error(),
			)
			return nil, outcomeInvalidFilename, ErrInvalidFilename
		}
		s.log.ErrorContext(ctx, "blob write failed", "owner", in.Owner, "error", err.Error())
		return nil, outcomeFailed, fmt.Errorf("upload to storage: %w", err)
	}

	if in.Size > 0 && info.Size != in.Size {
		s.log.WarnContext(ctx, "declared size differs from stored size",
			"owner", in.Owner,
			"declared_size", in.Size,
			"stored_size", info.Size,
		)
	}

	f, err := s.registry.Create(ctx, in.Owner, in.Filename, in.ContentType, info.Size, info.Path)
	if err != nil {
		s.log.ErrorContext(ctx, "file record not created; blob left without metadata",
			"owner", in.Owner,
			"storage_path", info.Path,
			"error", err.Error(),
		)
		if errors.Is(err, registry.ErrPersistence) {
			return nil, outcomeFailed, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		return nil, outcomeFailed, fmt.Errorf("create record: %w", err)
	}
	return f, outcomeStored, nil
}

func (s *fileService) List(ctx context.Context, owner string) (*FileListResult, error) {
	if owner == "" {
		return nil, ErrOwnerRequired
	}
	files, err := s.registry.ListByOwner(ctx, owner)
	if err != nil {
		return nil, s.persistenceError(ctx, "list", err)
	}
	items := make([]FileListItem, 0, len(files))
	for _, f := range files {
		items = append(items, FileListItem{StoredFile: f, SizeHuman: humanize.IBytes(uint64(f.Size))})
	}
	return &FileListResult{Items: items, Total: len(items)}, nil
}

func (s *fileService) Get(ctx context.Context, owner, id string) (*model.StoredFile, error) {
	if owner == "" {
		return nil, ErrOwnerRequired
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	f, err := s.registry.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			s.log.InfoContext(ctx, "file record missing", "file_id", id)
			return nil, ErrFileNotFound
		}
		return nil, s.persistenceError(ctx, "find", err)
	}
	if f.Owner != owner {
		s.log.WarnContext(ctx, "file access denied", "file_id", id, "owner", owner)
		return nil, ErrForbidden
	}
	return f, nil
}

func (s *fileService) Download(ctx context.Context, owner, id string) (*Download, error) {
	ctx, span := tracer.Start(ctx, "FileService.Download", trace.WithAttributes(attribute.String("file.id", id)))
	defer span.End()

	f, err := s.Get(ctx, owner, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	rc, info, err := s.store.Get(ctx, f.StoragePath)
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			s.log.ErrorContext(ctx, "blob missing for file record", "file_id", id)
			return nil, ErrFileNotFound
		case errors.Is(err, storage.ErrUnsafePath):
			s.log.ErrorContext(ctx, "file record points outside storage root", "file_id", id, "error", err.Error())
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}

	length := f.Size
	if length <= 0 || length != info.Size {
		if length > 0 {
			s.log.WarnContext(ctx, "blob size differs from record",
				"file_id", id,
				"record_size", f.Size,
				"blob_size", info.Size,
			)
		}
		length = info.Size
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}
	span.SetAttributes(attribute.Int64("file.size", length))

	return &Download{
		Body:          rc,
		ContentLength: length,
		ContentType:   contentType,
		Filename:      f.Filename,
	}, nil
}

func (s *fileService) persistenceError(ctx context.Context, op string, err error) error {
	s.log.ErrorContext(ctx, "file registry failure", "operation", op, "error", err.Error())
	if errors.Is(err, registry.ErrPersistence) {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return err
}

// blobName places each owner's files under a directory derived from the owner identity.
// The raw URL base64 alphabet has no separators or dots, so the segment cannot escape.
// A file named report.pdf uploaded by alice therefore lands at <root>/YWxpY2U/report.pdf,
// not directly under the root, and two owners never overwrite each other's blobs.
func blobName(owner, clean string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(owner)) + "/" + clean
}

// limitedReader passes through at most remaining bytes and fails once the
// underlying stream proves longer.
type limitedReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (l *limitedReader) Read(p []byte) (int, error) {
	// One byte past remaining is enough to prove the stream too long.
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	if int64(n) > l.remaining {
		l.exceeded = true
		return 0, ErrSizeLimitExceeded
	}
	l.remaining -= int64(n)
	return n, err
}

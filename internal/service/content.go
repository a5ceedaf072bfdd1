package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/emrgen/content/internal/compress"
	"github.com/emrgen/content/internal/model"
	"github.com/emrgen/content/internal/publish"
	"github.com/emrgen/content/internal/store"
	"github.com/emrgen/content/internal/tree"
)

// NewContentService creates a new ContentService.
func NewContentService(compress compress.Compress, store store.Store, publisher *publish.Publisher) *ContentService {
	return &ContentService{
		compress:  compress,
		store:     store,
		publisher: publisher,
	}
}

// ContentService manages contents, their drafts and their publication.
type ContentService struct {
	compress  compress.Compress
	store     store.Store
	publisher *publish.Publisher
}

type CreateContentRequest struct {
	Type        model.ContentType
	Title       string
	Description string
	LicenceCode string
	// Draft defaults to an empty tree titled after the content.
	Draft *tree.Container
}

// CreateContent creates a new content with its initial draft.
func (s *ContentService) CreateContent(ctx context.Context, req CreateContentRequest) (*model.PublishableContent, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContentType, req.Type)
	}
	if req.LicenceCode != "" {
		if _, err := s.store.GetLicence(ctx, req.LicenceCode); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownLicence, req.LicenceCode)
			}
			return nil, err
		}
	}

	draft := req.Draft
	if draft == nil {
		draft = tree.NewRoot(req.Title)
	}
	title := req.Title
	if title == "" {
		title = draft.GetTitle()
	}

	content := &model.PublishableContent{
		ID:          uuid.New().String(),
		Type:        req.Type,
		Title:       title,
		Slug:        tree.Slugify(title),
		Description: req.Description,
		LicenceCode: req.LicenceCode,
	}
	if err := s.encodeDraft(content, draft); err != nil {
		return nil, err
	}

	if err := s.store.CreateContent(ctx, content); err != nil {
		return nil, err
	}

	logrus.Infof("created %s %s (%s)", content.Type, content.ID, content.Slug)
	return content, nil
}

// GetContent returns a content without decoding its draft.
func (s *ContentService) GetContent(ctx context.Context, id uuid.UUID) (*model.PublishableContent, error) {
	return s.store.GetContent(ctx, id)
}

// ListContents lists contents of a type, all of them when contentType is empty.
func (s *ContentService) ListContents(ctx context.Context, contentType model.ContentType) ([]*model.PublishableContent, error) {
	if contentType != "" && !contentType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContentType, contentType)
	}
	return s.store.ListContents(ctx, contentType)
}

// GetDraft returns a content and its decoded draft tree.
func (s *ContentService) GetDraft(ctx context.Context, id uuid.UUID) (*model.PublishableContent, *tree.Container, error) {
	content, err := s.store.GetContent(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	draft, err := decodeDraft(content)
	if err != nil {
		return nil, nil, err
	}

	return content, draft, nil
}

// SaveDraft replaces the draft of a content. An empty draft is accepted, any other structural
// problem is not.
func (s *ContentService) SaveDraft(ctx context.Context, id uuid.UUID, draft *tree.Container) (*model.PublishableContent, error) {
	if err := tree.Validate(draft); err != nil && !errors.Is(err, tree.ErrEmptyTree) {
		return nil, err
	}

	content, err := s.store.GetContent(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.encodeDraft(content, draft); err != nil {
		return nil, err
	}
	if err := s.store.UpdateContent(ctx, content); err != nil {
		return nil, err
	}

	return content, nil
}

// MoveTargets lists every node of the draft with whether the node at path can be moved next to it.
func (s *ContentService) MoveTargets(ctx context.Context, id uuid.UUID, path string) ([]tree.Target, error) {
	_, draft, err := s.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}

	switch n := tree.Find(draft, path).(type) {
	case *tree.Container:
		if n == draft {
			return nil, fmt.Errorf("%w: the root cannot be moved", tree.ErrInvalidMove)
		}
		return tree.TargetTaggedTreeForContainer(n, draft), nil
	case *tree.Extract:
		return tree.TargetTaggedTreeForExtract(n, draft), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, path)
	}
}

// Move moves the node at path right before, or right after, the node at targetPath and saves
// the draft.
func (s *ContentService) Move(ctx context.Context, id uuid.UUID, path, targetPath string, after bool) (*model.PublishableContent, error) {
	_, draft, err := s.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}

	moving := tree.Find(draft, path)
	if moving == nil {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, path)
	}
	target := tree.Find(draft, targetPath)
	if target == nil {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, targetPath)
	}

	if after {
		err = tree.MoveAfter(moving, target)
	} else {
		err = tree.MoveBefore(moving, target)
	}
	if err != nil {
		return nil, err
	}

	return s.SaveDraft(ctx, id, draft)
}

// Publish publishes the current draft of a content.
func (s *ContentService) Publish(ctx context.Context, id uuid.UUID) (*model.PublishedContent, error) {
	content, draft, err := s.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.publisher.Publish(ctx, content, draft)
}

// Unpublish removes the public version of a content, if any.
func (s *ContentService) Unpublish(ctx context.Context, id uuid.UUID) error {
	content, err := s.store.GetContent(ctx, id)
	if err != nil {
		return err
	}
	return s.publisher.Unpublish(ctx, content)
}

// Published returns the live published record of a content.
func (s *ContentService) Published(ctx context.Context, id uuid.UUID) (*model.PublishedContent, error) {
	return s.publisher.Published(ctx, id)
}

// ListPublished lists every published record.
func (s *ContentService) ListPublished(ctx context.Context) ([]*model.PublishedContent, error) {
	return s.store.ListPublishedContents(ctx)
}

// LoadPublic reads back the public tree of a content.
func (s *ContentService) LoadPublic(ctx context.Context, id uuid.UUID) (*publish.PublicContent, error) {
	published, err := s.publisher.Published(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.publisher.LoadPublic(ctx, published)
}

// DeleteContent unpublishes and deletes a content.
func (s *ContentService) DeleteContent(ctx context.Context, id uuid.UUID) error {
	if err := s.Unpublish(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteContent(ctx, id)
}

func (s *ContentService) encodeDraft(content *model.PublishableContent, draft *tree.Container) error {
	data, err := tree.Encode(draft)
	if err != nil {
		return err
	}
	sha, err := tree.Version(draft)
	if err != nil {
		return err
	}

	encoded, err := s.compress.Encode(data)
	if err != nil {
		return err
	}

	content.Draft = encoded
	content.Compression = s.compress.Name()
	content.ShaDraft = sha
	return nil
}

// decodeDraft uses the codec the draft was stored with, which may differ from the current one.
func decodeDraft(content *model.PublishableContent) (*tree.Container, error) {
	codec, err := compress.New(content.Compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDraftCorrupted, err)
	}

	data, err := codec.Decode(content.Draft)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDraftCorrupted, err)
	}

	draft, err := tree.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDraftCorrupted, err)
	}
	return draft, nil
}

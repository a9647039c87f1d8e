// Package services – PostService
//
// PostService owns the blog post lifecycle: creation with slug derivation,
// admin listing and partial updates, the published-only public projections,
// and deletion including best-effort cleanup of locally stored cover images.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jalud/go-leads-backend/internal/domain"
	"github.com/jalud/go-leads-backend/internal/repo"
)

// MediaRemover deletes a stored upload by its public reference. Removers are
// expected to ignore references outside their managed namespace.
type MediaRemover interface {
	Remove(ref string) error
}

// CreatePostInput carries the editor payload for a new blog post.
type CreatePostInput struct {
	Title           string
	Slug            string // optional; derived from Title when empty
	Excerpt         string
	Content         string
	FullContent     []string
	Image           string
	Category        string
	MetaTitle       string
	MetaDescription string
	Keywords        []string
	Status          string // optional; defaults to draft
	AIGenerated     bool
}

// Validate checks the mandatory-field and length invariants for a new post.
func (in CreatePostInput) Validate() error {
	var missing []string
	for _, f := range []struct{ name, val string }{
		{"title", in.Title},
		{"excerpt", in.Excerpt},
		{"content", in.Content},
		{"category", in.Category},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return validationErrorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Excerpt)) > domain.MaxExcerptLen {
		return validationErrorf("excerpt exceeds %d characters", domain.MaxExcerptLen)
	}
	if in.Status != "" && !domain.ValidPostStatus(in.Status) {
		return validationErrorf("unknown status %q", in.Status)
	}
	return nil
}

// UpdatePostInput carries a partial post update. Nil fields are untouched.
type UpdatePostInput struct {
	Title           *string
	Slug            *string
	Excerpt         *string
	Content         *string
	FullContent     *[]string
	Image           *string
	Category        *string
	MetaTitle       *string
	MetaDescription *string
	Keywords        *[]string
	Status          *string
}

// PostListFilter selects and orders the posts returned by List.
type PostListFilter struct {
	Status   string
	Category string
	SortBy   string // createdAt|updatedAt|publishedAt|title|category|status
	Order    string // asc|desc (default desc)
}

// PostService coordinates blog post persistence and media cleanup.
type PostService struct {
	DB    *gorm.DB
	Media MediaRemover
}

// Create validates the input, derives the slug when none is supplied, and
// persists the post. The initial status defaults to draft. A slug collision
// fails with ErrSlugTaken.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*domain.BlogPost, error) {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("post.category", in.Category)),
	)
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = DeriveSlug(in.Title)
	}
	if slug == "" {
		return nil, validationErrorf("title yields an empty slug")
	}

	status := in.Status
	if status == "" {
		status = domain.PostStatusDraft
	}

	post := &domain.BlogPost{
		Title:           strings.TrimSpace(in.Title),
		Slug:            slug,
		Excerpt:         strings.TrimSpace(in.Excerpt),
		Content:         in.Content,
		FullContent:     in.FullContent,
		Image:           strings.TrimSpace(in.Image),
		Category:        strings.TrimSpace(in.Category),
		MetaTitle:       strings.TrimSpace(in.MetaTitle),
		MetaDescription: strings.TrimSpace(in.MetaDescription),
		Keywords:        in.Keywords,
		Status:          status,
		AIGenerated:     in.AIGenerated,
	}

	if _, err := repo.CreatePost(ctx, s.DB, post); err != nil {
		if errors.Is(err, repo.ErrDuplicateSlug) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("post.id", post.ID))
	return post, nil
}

// List returns all posts matching the admin filter.
func (s *PostService) List(ctx context.Context, f PostListFilter) ([]domain.BlogPost, error) {
	if f.Status != "" && !domain.ValidPostStatus(f.Status) {
		return []domain.BlogPost{}, nil
	}
	return repo.ListPosts(ctx, s.DB, f.Status, f.Category, f.SortBy, f.Order)
}

// ListPublished returns the public projection of every published post,
// newest publication first. Drafts and archived posts are invisible here.
func (s *PostService) ListPublished(ctx context.Context) ([]domain.PublicPost, error) {
	posts, err := repo.ListPublishedPosts(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PublicPost, 0, len(posts))
	for i := range posts {
		out = append(out, posts[i].Public())
	}
	return out, nil
}

// Get returns a post by ID for the admin dashboard, or ErrPostNotFound.
func (s *PostService) Get(ctx context.Context, id string) (*domain.BlogPost, error) {
	p, err := repo.GetPost(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetBySlug resolves a slug to its full post only when published. Unpublished
// posts are indistinguishable from missing ones.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	p, err := repo.GetPublishedPostBySlug(ctx, s.DB, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return p, nil
}

// Update applies a partial change to a post. When the status transitions to
// published and the post has never carried a publication timestamp, the
// timestamp is stamped now; it is never overwritten afterwards.
func (s *PostService) Update(ctx context.Context, id string, in UpdatePostInput) (*domain.BlogPost, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return nil, validationErrorf("title must not be empty")
		}
		updates["title"] = t
	}
	if in.Slug != nil {
		slug := strings.TrimSpace(*in.Slug)
		if slug == "" {
			title := current.Title
			if t, ok := updates["title"].(string); ok {
				title = t
			}
			slug = DeriveSlug(title)
		}
		updates["slug"] = slug
	}
	if in.Excerpt != nil {
		e := strings.TrimSpace(*in.Excerpt)
		if e == "" {
			return nil, validationErrorf("excerpt must not be empty")
		}
		if utf8.RuneCountInString(e) > domain.MaxExcerptLen {
			return nil, validationErrorf("excerpt exceeds %d characters", domain.MaxExcerptLen)
		}
		updates["excerpt"] = e
	}
	if in.Content != nil {
		updates["content"] = *in.Content
	}
	if in.FullContent != nil {
		v, merr := marshalJSONColumn(*in.FullContent)
		if merr != nil {
			return nil, merr
		}
		updates["full_content"] = v
	}
	if in.Image != nil {
		updates["image"] = strings.TrimSpace(*in.Image)
	}
	if in.Category != nil {
		c := strings.TrimSpace(*in.Category)
		if c == "" {
			return nil, validationErrorf("category must not be empty")
		}
		updates["category"] = c
	}
	if in.MetaTitle != nil {
		updates["meta_title"] = strings.TrimSpace(*in.MetaTitle)
	}
	if in.MetaDescription != nil {
		updates["meta_description"] = strings.TrimSpace(*in.MetaDescription)
	}
	if in.Keywords != nil {
		v, merr := marshalJSONColumn(*in.Keywords)
		if merr != nil {
			return nil, merr
		}
		updates["keywords"] = v
	}
	if in.Status != nil {
		st := strings.TrimSpace(*in.Status)
		if !domain.ValidPostStatus(st) {
			return nil, validationErrorf("unknown status %q", st)
		}
		updates["status"] = st
		if st == domain.PostStatusPublished && current.PublishedAt == nil {
			now := time.Now().UTC()
			updates["published_at"] = &now
		}
	}

	if err := repo.UpdatePost(ctx, s.DB, id, updates); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateSlug):
			return nil, ErrSlugTaken
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrPostNotFound
		default:
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

// marshalJSONColumn renders a string slice the way the JSON serializer stores
// it, for use in column-level partial updates.
func marshalJSONColumn(vals []string) (string, error) {
	if vals == nil {
		vals = []string{}
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Delete removes a post and, when its cover image lives in local upload
// storage, asks the media store to drop the file. File removal is best-effort
// and never fails the delete.
func (s *PostService) Delete(ctx context.Context, id string) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := repo.DeletePost(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	if post.Image != "" && s.Media != nil {
		if err := s.Media.Remove(post.Image); err != nil {
			log.Warn().Err(err).Str("post_id", id).Str("image", post.Image).
				Msg("cover image cleanup failed")
		}
	}
	return nil
}

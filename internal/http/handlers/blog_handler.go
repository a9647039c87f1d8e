// Blog HTTP handlers.
//
// This file exposes the REST endpoints for blog content:
//   - POST   /api/blog/generate          (AI draft generation)
//   - POST   /api/blog/upload-image      (cover image upload)
//   - POST   /api/blog/posts             (create)
//   - GET    /api/blog/posts             (admin list)
//   - GET    /api/blog/posts/published   (public listing, reduced shape)
//   - GET    /api/blog/posts/{id}        (admin detail)
//   - GET    /api/blog/posts/slug/{slug} (public detail, published only)
//   - PUT    /api/blog/posts/{id}        (update)
//   - DELETE /api/blog/posts/{id}        (delete, drops local cover image)
package handlers

import (
	"errors"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/jalud/go-leads-backend/internal/domain"
	"github.com/jalud/go-leads-backend/internal/media"
	"github.com/jalud/go-leads-backend/internal/services"
)

//
// DTOs
//

// GenerateRequest is the JSON payload for AI draft generation.
type GenerateRequest struct {
	Topic    string   `json:"topic" example:"Keramikversiegelung im Winter"`
	Keywords []string `json:"keywords" example:"keramikversiegelung,winter"`
	Category string   `json:"category" example:"pflege-tipps"`
	Tone     string   `json:"tone" example:"professional"`
}

// GenerateResponse wraps a generated draft.
type GenerateResponse struct {
	Success bool                     `json:"success"`
	Content *services.GeneratedDraft `json:"content"`
}

// UploadResponse acknowledges a stored cover image.
type UploadResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl" example:"/uploads/blog/141add05-4415-4938-b5a1-17e0d3171aff.jpg"`
	Filename string `json:"filename" example:"141add05-4415-4938-b5a1-17e0d3171aff.jpg"`
}

// CreatePostRequest is the JSON payload for creating a blog post.
type CreatePostRequest struct {
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	Excerpt         string   `json:"excerpt"`
	Content         string   `json:"content"`
	FullContent     []string `json:"fullContent"`
	Image           string   `json:"image"`
	Category        string   `json:"category"`
	MetaTitle       string   `json:"metaTitle"`
	MetaDescription string   `json:"metaDescription"`
	Keywords        []string `json:"keywords"`
	Status          string   `json:"status"`
	AIGenerated     bool     `json:"aiGenerated"`
}

// UpdatePostRequest is the JSON payload for a partial post update. Absent
// fields stay untouched.
type UpdatePostRequest struct {
	Title           *string   `json:"title"`
	Slug            *string   `json:"slug"`
	Excerpt         *string   `json:"excerpt"`
	Content         *string   `json:"content"`
	FullContent     *[]string `json:"fullContent"`
	Image           *string   `json:"image"`
	Category        *string   `json:"category"`
	MetaTitle       *string   `json:"metaTitle"`
	MetaDescription *string   `json:"metaDescription"`
	Keywords        *[]string `json:"keywords"`
	Status          *string   `json:"status"`
}

// PostResponse wraps a single post.
type PostResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Post    *domain.BlogPost `json:"post"`
}

// ListPostsResponse wraps the admin post listing.
type ListPostsResponse struct {
	Success bool              `json:"success"`
	Count   int               `json:"count"`
	Posts   []domain.BlogPost `json:"posts"`
}

// PublishedPostsResponse wraps the public listing of published posts.
type PublishedPostsResponse struct {
	Success bool                `json:"success"`
	Posts   []domain.PublicPost `json:"posts"`
}

//
// Handlers
//

// GenerateDraft godoc
// @ID          generateDraft
// @Summary     Generate a blog draft with AI
// @Description Asks the configured Azure OpenAI deployment for a structured German draft on the given topic.
// @Tags        Blog
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.GenerateRequest  true  "Generation request"
//
// @Success     200  {object}  handlers.GenerateResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Topic missing"
// @Failure     500  {object}  handlers.ErrorResponse  "Generation failed"
// @Failure     503  {object}  handlers.ErrorResponse  "Generator not configured"
// @Router      /blog/generate [post]
func (h *Handlers) GenerateDraft(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Ungültiger JSON-Body")
		return
	}

	draft, err := h.contentSvc.GenerateDraft(c.Request.Context(), services.GenerateDraftInput{
		Topic:    req.Topic,
		Keywords: req.Keywords,
		Category: req.Category,
		Tone:     req.Tone,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTopicRequired):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Thema ist erforderlich")
		case errors.Is(err, services.ErrGeneratorUnavailable):
			fail(c, http.StatusServiceUnavailable, ErrCodeGeneratorOffline,
				"Azure OpenAI ist nicht konfiguriert. Bitte API-Key hinzufügen.")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeGenerationFailed,
				"Fehler bei der AI-Generierung: "+err.Error())
		}
		return
	}
	ok(c, http.StatusOK, GenerateResponse{Success: true, Content: draft})
}

// UploadImage godoc
// @ID          uploadImage
// @Summary     Upload a blog cover image
// @Description Accepts a JPEG, PNG, or WebP file up to the configured size cap and returns its public URL.
// @Tags        Blog
// @Accept      multipart/form-data
// @Produce     json
//
// @Param       image  formData  file  true  "Image file"
//
// @Success     200  {object}  handlers.UploadResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing or rejected file"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /blog/upload-image [post]
func (h *Handlers) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Keine Datei hochgeladen")
		return
	}

	ref, err := h.media.Save(fh)
	if err != nil {
		if errors.Is(err, media.ErrFileRejected) {
			fail(c, http.StatusBadRequest, ErrCodeUploadRejected,
				"Nur JPEG, PNG und WebP bis 5 MB sind erlaubt")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "Fehler beim Bild-Upload")
		return
	}
	ok(c, http.StatusOK, UploadResponse{Success: true, ImageURL: ref, Filename: path.Base(ref)})
}

// CreatePost godoc
// @ID          createPost
// @Summary     Create a blog post
// @Description Creates a post, deriving the slug from the title when none is supplied. Initial status defaults to draft.
// @Tags        Blog
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreatePostRequest  true  "Post payload"
//
// @Success     201  {object}  handlers.PostResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing or invalid fields"
// @Failure     409  {object}  handlers.ErrorResponse  "Slug already in use"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /blog/posts [post]
func (h *Handlers) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Ungültiger JSON-Body")
		return
	}

	post, err := h.postSvc.Create(c.Request.Context(), services.CreatePostInput{
		Title:           req.Title,
		Slug:            req.Slug,
		Excerpt:         req.Excerpt,
		Content:         req.Content,
		FullContent:     req.FullContent,
		Image:           req.Image,
		Category:        req.Category,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		Keywords:        req.Keywords,
		Status:          req.Status,
		AIGenerated:     req.AIGenerated,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Fehler beim Erstellen: "+err.Error())
		case errors.Is(err, services.ErrSlugTaken):
			fail(c, http.StatusConflict, ErrCodeSlugTaken, "Slug bereits vergeben")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "Fehler beim Erstellen des Blog-Beitrags")
		}
		return
	}
	ok(c, http.StatusCreated, PostResponse{Success: true, Message: "Blog-Beitrag erfolgreich erstellt", Post: post})
}

// ListPosts godoc
// @ID          listPosts
// @Summary     List blog posts
// @Description Returns all posts for the admin dashboard, optionally filtered by status and category.
// @Tags        Blog
// @Produce     json
//
// @Param       status    query  string  false "Filter by status"    Enums(draft, published, archived)
// @Param       category  query  string  false "Filter by category"
// @Param       sortBy    query  string  false "Sort field"          default(createdAt)
// @Param       order     query  string  false "Sort direction"      Enums(asc, desc) default(desc)
//
// @Success     200  {object}  handlers.ListPostsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /blog/posts [get]
func (h *Handlers) ListPosts(c *gin.Context) {
	posts, err := h.postSvc.List(c.Request.Context(), services.PostListFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		SortBy:   c.DefaultQuery("sortBy", "createdAt"),
		Order:    c.DefaultQuery("order", "desc"),
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "Fehler beim Laden der Beiträge")
		return
	}
	ok(c, http.StatusOK, ListPostsResponse{Success: true, Count: len(posts), Posts: posts})
}

// ListPublishedPosts godoc
// @ID          listPublishedPosts
// @Summary     List published posts (public)
// @Description Returns the reduced public projection of every published post, newest publication first.
// @Tags        Blog
// @Produce     json
//
// @Success     200  {object}  handlers.PublishedPostsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /blog/posts/published [get]
func (h *Handlers) ListPublishedPosts(c *gin.Context) {
	posts, err := h.postSvc.ListPublished(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "Fehler beim Laden")
		return
	}
	ok(c, http.StatusOK, PublishedPostsResponse{Success: true, Posts: posts})
}

// GetPost godoc
// @ID          getPost
// @Summary     Get a single post
// @Tags        Blog
// @Produce     json
//
// @Param       id  path  string  true  "Post ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.PostResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Post not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /blog/posts/{id} [get]
func (h *Handlers) GetPost(c *gin.Context) {
	post, err := h.postSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "Beitrag nicht gefunden")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "Fehler beim Laden")
		return
	}
	ok(c, http.StatusOK, PostResponse{Success: true, Post: post})
}

// GetPostBySlug godoc
// @ID          getPostBySlug
// @Summary     Get a published post by slug (public)
// @Description Resolves a slug to its full post. Drafts and archived posts answer 404.
// @Tags        Blog
// @Produce     json
//
// @Param       slug  path  string  true  "Post slug"  example(ueber-groesse-glueck)
//
// @Success     200  {object}  handlers.PostResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Post not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /blog/posts/slug/{slug} [get]
func (h *Handlers) GetPostBySlug(c *gin.Context) {
	post, err := h.postSvc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "Beitrag nicht gefunden")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "Fehler beim Laden")
		return
	}
	ok(c, http.StatusOK, PostResponse{Success: true, Post: post})
}

// UpdatePost godoc
// @ID          updatePost
// @Summary     Update a blog post
// @Description Applies a partial update. The first transition to published stamps the publication timestamp; it is never overwritten.
// @Tags        Blog
// @Accept      json
// @Produce     json
//
// @Param       id    path  string  true  "Post ID (UUID)"  format(uuid)
// @Param       body  body  handlers.UpdatePostRequest  true  "Partial update"
//
// @Success     200  {object}  handlers.PostResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid fields"
// @Failure     404  {object}  handlers.ErrorResponse  "Post not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Slug already in use"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /blog/posts/{id} [put]
func (h *Handlers) UpdatePost(c *gin.Context) {
	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Ungültiger JSON-Body")
		return
	}

	post, err := h.postSvc.Update(c.Request.Context(), c.Param("id"), services.UpdatePostInput{
		Title:           req.Title,
		Slug:            req.Slug,
		Excerpt:         req.Excerpt,
		Content:         req.Content,
		FullContent:     req.FullContent,
		Image:           req.Image,
		Category:        req.Category,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		Keywords:        req.Keywords,
		Status:          req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Fehler beim Aktualisieren: "+err.Error())
		case errors.Is(err, services.ErrPostNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "Beitrag nicht gefunden")
		case errors.Is(err, services.ErrSlugTaken):
			fail(c, http.StatusConflict, ErrCodeSlugTaken, "Slug bereits vergeben")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, "Fehler beim Aktualisieren")
		}
		return
	}
	ok(c, http.StatusOK, PostResponse{Success: true, Message: "Beitrag erfolgreich aktualisiert", Post: post})
}

// DeletePost godoc
// @ID          deletePost
// @Summary     Delete a blog post
// @Description Removes the post and, best-effort, its locally stored cover image.
// @Tags        Blog
// @Produce     json
//
// @Param       id  path  string  true  "Post ID (UUID)"  format(uuid)
//
// @Success     200  {object}  map[string]any
// @Failure     404  {object}  handlers.ErrorResponse  "Post not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /blog/posts/{id} [delete]
func (h *Handlers) DeletePost(c *gin.Context) {
	if err := h.postSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "Beitrag nicht gefunden")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, "Fehler beim Löschen")
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true, "message": "Beitrag erfolgreich gelöscht"})
}

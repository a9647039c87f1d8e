// Package domain defines the persistence models for leads and blog posts.
// These types are mapped with GORM and form the core data layer of the
// marketing backend.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Lead packages. The values are the wire values submitted by the public
// contact form and stored verbatim.
const (
	PackageBasic    = "basic"
	PackagePremium  = "premium"
	PackageLuxus    = "luxus"
	PackageBeratung = "beratung"
)

// Lead statuses. German values are part of the public admin API contract.
const (
	LeadStatusNew       = "neu"
	LeadStatusContacted = "kontaktiert"
	LeadStatusCompleted = "abgeschlossen"
	LeadStatusRejected  = "abgelehnt"
)

// Blog post statuses.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

// MaxExcerptLen bounds the stored excerpt length in runes.
const MaxExcerptLen = 300

// ValidPackage reports whether p is one of the fixed service tiers.
func ValidPackage(p string) bool {
	switch p {
	case PackageBasic, PackagePremium, PackageLuxus, PackageBeratung:
		return true
	}
	return false
}

// ValidLeadStatus reports whether s is one of the fixed lead statuses.
func ValidLeadStatus(s string) bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusCompleted, LeadStatusRejected:
		return true
	}
	return false
}

// ValidPostStatus reports whether s is one of the fixed post statuses.
func ValidPostStatus(s string) bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

// Lead represents a prospective customer's contact-form submission.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - FirstName/LastName/Phone/Email: mandatory contact data; the email is
//     stored lower-cased.
//   - Package: requested service tier (basic/premium/luxus/beratung).
//   - Message: optional free text, defaulted to "".
//   - Status: lifecycle value (neu/kontaktiert/abgeschlossen/abgelehnt).
//   - Notes: staff notes maintained in the admin dashboard.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (retains row for audit/history).
type Lead struct {
	ID        string         `json:"id"        gorm:"type:char(36);primaryKey"`
	FirstName string         `json:"firstName" gorm:"type:varchar(128);not null"`
	LastName  string         `json:"lastName"  gorm:"type:varchar(128);not null"`
	Phone     string         `json:"phone"     gorm:"type:varchar(64);not null"`
	Email     string         `json:"email"     gorm:"type:varchar(255);not null;index"`
	Package   string         `json:"package"   gorm:"type:varchar(32);not null;check:package IN ('basic','premium','luxus','beratung')"`
	Message   string         `json:"message"   gorm:"type:text;not null;default:''"`
	Status    string         `json:"status"    gorm:"type:varchar(32);not null;default:'neu';index;check:status IN ('neu','kontaktiert','abgeschlossen','abgelehnt')"`
	Notes     string         `json:"notes"     gorm:"type:text;not null;default:''"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-"         gorm:"index"`
}

// TableName returns the database table name for Lead.
func (Lead) TableName() string { return "leads" }

// BlogPost represents an article on the marketing site. Posts move through a
// draft → published → archived lifecycle; only published posts are resolvable
// through the public endpoints.
//
// FullContent and Keywords are stored as JSON arrays via the GORM JSON
// serializer so the SQLite schema stays flat.
type BlogPost struct {
	ID              string         `json:"id"              gorm:"type:char(36);primaryKey"`
	Title           string         `json:"title"           gorm:"type:varchar(255);not null"`
	Slug            string         `json:"slug"            gorm:"type:varchar(255);not null;uniqueIndex:ux_posts_slug"`
	Excerpt         string         `json:"excerpt"         gorm:"type:varchar(300);not null"`
	Content         string         `json:"content"         gorm:"type:text;not null"`
	FullContent     []string       `json:"fullContent"     gorm:"type:text;serializer:json"`
	Image           string         `json:"image"           gorm:"type:varchar(512);not null;default:''"`
	Category        string         `json:"category"        gorm:"type:varchar(128);not null;index"`
	MetaTitle       string         `json:"metaTitle"       gorm:"type:varchar(255);not null;default:''"`
	MetaDescription string         `json:"metaDescription" gorm:"type:varchar(512);not null;default:''"`
	Keywords        []string       `json:"keywords"        gorm:"type:text;serializer:json"`
	Status          string         `json:"status"          gorm:"type:varchar(32);not null;default:'draft';index;check:status IN ('draft','published','archived')"`
	AIGenerated     bool           `json:"aiGenerated"     gorm:"not null;default:false"`
	PublishedAt     *time.Time     `json:"publishedAt,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `json:"-"               gorm:"index"`
}

// TableName returns the database table name for BlogPost.
func (BlogPost) TableName() string { return "blog_posts" }

// PublicPost is the reduced projection of a published post served to the
// marketing frontend. It deliberately omits the full-content paragraphs.
type PublicPost struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Image       string     `json:"image"`
	Category    string     `json:"category"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// Public returns the reduced public-facing projection of p.
func (p *BlogPost) Public() PublicPost {
	return PublicPost{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Image:       p.Image,
		Category:    p.Category,
		PublishedAt: p.PublishedAt,
	}
}

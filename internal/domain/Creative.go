package domain

import "fmt"

type CreativeKind string

const (
	CreativeKindImage    CreativeKind = "image"
	CreativeKindVideo    CreativeKind = "video"
	CreativeKindCarousel CreativeKind = "carousel"
)

type CreativeImage struct {
	URL  string `json:"url,omitempty"`
	Hash string `json:"hash,omitempty"`
}

type CreativeVideo struct {
	ID           string `json:"id"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// CreativeAttachment é um card de carrossel.
type CreativeAttachment struct {
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	LinkURL     string         `json:"link_url,omitempty"`
	Image       *CreativeImage `json:"image,omitempty"`
	Video       *CreativeVideo `json:"video,omitempty"`
}

// Creative é uma união discriminada por Kind: image usa Image, video usa Video
// e carousel usa Children.
type Creative struct {
	Kind         CreativeKind         `json:"kind"`
	ExternalID   string               `json:"external_id,omitempty"`
	Name         string               `json:"name,omitempty"`
	Title        string               `json:"title,omitempty"`
	Body         string               `json:"body,omitempty"`
	LinkURL      string               `json:"link_url,omitempty"`
	CallToAction string               `json:"call_to_action,omitempty"`
	Image        *CreativeImage       `json:"image,omitempty"`
	Video        *CreativeVideo       `json:"video,omitempty"`
	Children     []CreativeAttachment `json:"children,omitempty"`
}

func (c *Creative) Validate() error {
	if c == nil {
		return nil
	}

	switch c.Kind {
	case CreativeKindImage:
		if c.Image == nil || (c.Image.URL == "" && c.Image.Hash == "") {
			return fmt.Errorf("creative %s: image kind without image", c.ExternalID)
		}
	case CreativeKindVideo:
		if c.Video == nil || c.Video.ID == "" {
			return fmt.Errorf("creative %s: video kind without video id", c.ExternalID)
		}
	case CreativeKindCarousel:
		if len(c.Children) == 0 {
			return fmt.Errorf("creative %s: carousel without children", c.ExternalID)
		}
	default:
		return fmt.Errorf("creative %s: unknown kind %q", c.ExternalID, c.Kind)
	}

	return nil
}

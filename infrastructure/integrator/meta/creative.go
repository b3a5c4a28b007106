package meta

import (
	metadomain "github.com/vfg2006/adsync-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/adsync-api/internal/domain"
)

// BuildCreative reconstrói o criativo como união: carrossel tem prioridade
// sobre vídeo, que tem prioridade sobre imagem. Sem nenhum dos três o
// anúncio segue sem criativo.
func BuildCreative(c *metadomain.AdCreative) *domain.Creative {
	if c == nil {
		return nil
	}

	creative := &domain.Creative{
		ExternalID:   c.ID,
		Name:         c.Name,
		Title:        c.Title,
		Body:         c.Body,
		CallToAction: c.CallToActionType,
	}

	var link *metadomain.LinkData
	var video *metadomain.VideoData
	if c.ObjectStorySpec != nil {
		link = c.ObjectStorySpec.LinkData
		video = c.ObjectStorySpec.VideoData
	}
	feed := c.AssetFeedSpec

	if link != nil {
		fillText(creative, link.Name, link.Message, link.Link, link.CallToAction)
	}
	if video != nil {
		fillText(creative, video.Title, video.Message, "", video.CallToAction)
	}
	if feed != nil {
		if creative.Title == "" && len(feed.Titles) > 0 {
			creative.Title = feed.Titles[0].Text
		}
		if creative.Body == "" && len(feed.Bodies) > 0 {
			creative.Body = feed.Bodies[0].Text
		}
		if creative.LinkURL == "" && len(feed.LinkURLs) > 0 {
			creative.LinkURL = feed.LinkURLs[0].WebsiteURL
		}
	}

	switch {
	case link != nil && len(link.ChildAttachments) > 0:
		creative.Kind = domain.CreativeKindCarousel
		for _, child := range link.ChildAttachments {
			creative.Children = append(creative.Children, childAttachment(child))
		}
	case feed != nil && len(feed.Images)+len(feed.Videos) > 1:
		creative.Kind = domain.CreativeKindCarousel
		for _, v := range feed.Videos {
			creative.Children = append(creative.Children, domain.CreativeAttachment{
				Video: &domain.CreativeVideo{ID: v.VideoID, ThumbnailURL: v.ThumbnailURL},
			})
		}
		for _, img := range feed.Images {
			creative.Children = append(creative.Children, domain.CreativeAttachment{
				Image: &domain.CreativeImage{URL: img.URL, Hash: img.Hash},
			})
		}
	case c.VideoID != "":
		creative.Kind = domain.CreativeKindVideo
		creative.Video = &domain.CreativeVideo{ID: c.VideoID, ThumbnailURL: c.ThumbnailURL}
	case video != nil && video.VideoID != "":
		creative.Kind = domain.CreativeKindVideo
		creative.Video = &domain.CreativeVideo{ID: video.VideoID, ThumbnailURL: firstNonEmpty(video.ImageURL, c.ThumbnailURL)}
	case feed != nil && len(feed.Videos) == 1:
		creative.Kind = domain.CreativeKindVideo
		creative.Video = &domain.CreativeVideo{ID: feed.Videos[0].VideoID, ThumbnailURL: feed.Videos[0].ThumbnailURL}
	case c.ImageURL != "" || c.ImageHash != "":
		creative.Kind = domain.CreativeKindImage
		creative.Image = &domain.CreativeImage{URL: c.ImageURL, Hash: c.ImageHash}
	case link != nil && (link.Picture != "" || link.ImageHash != ""):
		creative.Kind = domain.CreativeKindImage
		creative.Image = &domain.CreativeImage{URL: link.Picture, Hash: link.ImageHash}
	case feed != nil && len(feed.Images) == 1:
		creative.Kind = domain.CreativeKindImage
		creative.Image = &domain.CreativeImage{URL: feed.Images[0].URL, Hash: feed.Images[0].Hash}
	default:
		return nil
	}

	return creative
}

func fillText(c *domain.Creative, title, body, linkURL string, cta *metadomain.CallToAction) {
	c.Title = firstNonEmpty(c.Title, title)
	c.Body = firstNonEmpty(c.Body, body)
	c.LinkURL = firstNonEmpty(c.LinkURL, linkURL)
	if c.CallToAction == "" && cta != nil {
		c.CallToAction = cta.Type
	}
}

func childAttachment(child metadomain.ChildAttachment) domain.CreativeAttachment {
	attachment := domain.CreativeAttachment{
		Name:        child.Name,
		Description: child.Description,
		LinkURL:     child.Link,
	}
	if child.VideoID != "" {
		attachment.Video = &domain.CreativeVideo{ID: child.VideoID, ThumbnailURL: child.Picture}
	} else if child.Picture != "" || child.ImageHash != "" {
		attachment.Image = &domain.CreativeImage{URL: child.Picture, Hash: child.ImageHash}
	}
	return attachment
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

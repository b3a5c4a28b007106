package metadomain

// AdCreative traz apenas os campos usados para reconstruir o criativo.
type AdCreative struct {
	ID               string           `json:"id"`
	Name             string           `json:"name,omitempty"`
	Title            string           `json:"title,omitempty"`
	Body             string           `json:"body,omitempty"`
	ImageURL         string           `json:"image_url,omitempty"`
	ImageHash        string           `json:"image_hash,omitempty"`
	VideoID          string           `json:"video_id,omitempty"`
	ThumbnailURL     string           `json:"thumbnail_url,omitempty"`
	CallToActionType string           `json:"call_to_action_type,omitempty"`
	ObjectStorySpec  *ObjectStorySpec `json:"object_story_spec,omitempty"`
	AssetFeedSpec    *AssetFeedSpec   `json:"asset_feed_spec,omitempty"`
}

type ObjectStorySpec struct {
	PageID    string     `json:"page_id,omitempty"`
	LinkData  *LinkData  `json:"link_data,omitempty"`
	VideoData *VideoData `json:"video_data,omitempty"`
}

type CallToAction struct {
	Type string `json:"type"`
}

type LinkData struct {
	Link             string            `json:"link,omitempty"`
	Message          string            `json:"message,omitempty"`
	Name             string            `json:"name,omitempty"`
	Description      string            `json:"description,omitempty"`
	Picture          string            `json:"picture,omitempty"`
	ImageHash        string            `json:"image_hash,omitempty"`
	CallToAction     *CallToAction     `json:"call_to_action,omitempty"`
	ChildAttachments []ChildAttachment `json:"child_attachments,omitempty"`
}

type ChildAttachment struct {
	Link        string `json:"link,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Picture     string `json:"picture,omitempty"`
	ImageHash   string `json:"image_hash,omitempty"`
	VideoID     string `json:"video_id,omitempty"`
}

type VideoData struct {
	VideoID      string        `json:"video_id"`
	ImageURL     string        `json:"image_url,omitempty"`
	ImageHash    string        `json:"image_hash,omitempty"`
	Title        string        `json:"title,omitempty"`
	Message      string        `json:"message,omitempty"`
	CallToAction *CallToAction `json:"call_to_action,omitempty"`
}

type AssetImage struct {
	Hash string `json:"hash,omitempty"`
	URL  string `json:"url,omitempty"`
}

type AssetVideo struct {
	VideoID      string `json:"video_id"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

type AssetText struct {
	Text string `json:"text"`
}

type AssetLink struct {
	WebsiteURL string `json:"website_url"`
}

type AssetFeedSpec struct {
	Images   []AssetImage `json:"images,omitempty"`
	Videos   []AssetVideo `json:"videos,omitempty"`
	Bodies   []AssetText  `json:"bodies,omitempty"`
	Titles   []AssetText  `json:"titles,omitempty"`
	LinkURLs []AssetLink  `json:"link_urls,omitempty"`
}

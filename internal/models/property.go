package models

import "strings"

// ImageSeparator joins the relative image paths stored in Property.ImageURL.
// Paths are not escaped, so a stored filename containing ", " splits wrongly.
const ImageSeparator = ", "

// Property represents a row in the properties table.
type Property struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	WhatsApp     string `json:"whatsapp"`
	Email        string `json:"email"`
	PropertyType string `json:"property_type"`
	BHKType      string `json:"bhk_type"`
	Address      string `json:"address"`
	SelectedCity string `json:"selected_city"`
	Message      string `json:"message,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	// City is a nullable legacy column no handler writes.
	City string `json:"city,omitempty"`
}

// Images splits ImageURL into its relative path fragments.
func (p Property) Images() []string {
	if p.ImageURL == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(p.ImageURL, ImageSeparator) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// JoinImages encodes relative image paths for Property.ImageURL.
func JoinImages(paths []string) string {
	return strings.Join(paths, ImageSeparator)
}

// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"strings"

	"github.com/kmscorp/kms-site/internal/model"
)

// HeroSlide is one slide of the landing hero. Saved slides are merged
// field-wise over the baked-in defaults: only non-empty fields override.
type HeroSlide struct {
	Tab         string `json:"tab"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Meta        string `json:"meta"`
	Image       string `json:"image"`
	Position    string `json:"position"`
}

// ProductCard is one product grid entry, grouped by container id.
type ProductCard struct {
	ID          string `json:"id"`
	ContainerID string `json:"containerId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageSrc    string `json:"imageSrc"`
	Alt         string `json:"alt"`
}

// SiteView is the renderable site model: the baked-in defaults with any
// well-formed saved overrides applied on top. Sections whose saved data
// is absent or malformed keep their defaults.
type SiteView struct {
	HeroSlides    []HeroSlide
	IntroVideoSrc string
	ProcessSteps  []string
	ProductCards  []ProductCard
}

// ApplyHeroSlides overrides the hero defaults with saved slides. Each
// saved slide is merged field-wise into the default at the same index;
// slides beyond the default count are ignored, matching the fixed tab
// layout of the page.
func ApplyHeroSlides(doc model.ContentDocument, view *SiteView) {
	var saved []HeroSlide
	if !doc.SliceSection(model.SectionHeroSlides, &saved) || len(saved) == 0 {
		return
	}

	limit := min(len(saved), len(view.HeroSlides))
	for i := 0; i < limit; i++ {
		mergeHeroSlide(&view.HeroSlides[i], saved[i])
	}
}

func mergeHeroSlide(dst *HeroSlide, src HeroSlide) {
	if strings.TrimSpace(src.Tab) != "" {
		dst.Tab = src.Tab
	}
	if strings.TrimSpace(src.Title) != "" {
		dst.Title = src.Title
	}
	if strings.TrimSpace(src.Description) != "" {
		dst.Description = src.Description
	}
	if strings.TrimSpace(src.Meta) != "" {
		dst.Meta = src.Meta
	}
	if strings.TrimSpace(src.Image) != "" {
		dst.Image = src.Image
	}
	if strings.TrimSpace(src.Position) != "" {
		dst.Position = src.Position
	}
}

// ApplyIntroVideo overrides the intro video source when a non-empty
// saved value exists.
func ApplyIntroVideo(doc model.ContentDocument, view *SiteView) {
	if src, ok := doc.StringSection(model.SectionIntroVideo); ok {
		view.IntroVideoSrc = src
	}
}

// ApplyProcessSteps replaces the process timeline when the saved list is
// a non-empty array of step titles.
func ApplyProcessSteps(doc model.ContentDocument, view *SiteView) {
	var saved []string
	if doc.SliceSection(model.SectionProcessSteps, &saved) && len(saved) > 0 {
		view.ProcessSteps = saved
	}
}

// ApplyProductCards replaces the product grids when the saved list is a
// non-empty array of cards.
func ApplyProductCards(doc model.ContentDocument, view *SiteView) {
	var saved []ProductCard
	if doc.SliceSection(model.SectionProductCards, &saved) && len(saved) > 0 {
		view.ProductCards = saved
	}
}

// ApplySavedContent applies every section's saved override to the view.
// Each section is independent: a malformed section never disturbs the
// others.
func ApplySavedContent(doc model.ContentDocument, view *SiteView) {
	ApplyHeroSlides(doc, view)
	ApplyIntroVideo(doc, view)
	ApplyProcessSteps(doc, view)
	ApplyProductCards(doc, view)
}

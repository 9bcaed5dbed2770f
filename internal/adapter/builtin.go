// internal/adapter/builtin.go
package adapter

import "time"

const vanGoghPlaceholder = "https://www.vangoghmuseum.nl/nl/collectie/default.jpg"

func vanGoghAccordion(title string) string {
	return "//h4[contains(@class, 'accordion-item-button') and contains(., '" + title + "')]"
}

// VanGogh walks the Van Gogh Museum collection, which loads more results as
// the page is scrolled.
func VanGogh() *Adapter {
	creator := ".art-object-page-content-creator-info"
	creatorFallback := ".inline-list__item:nth-child(2)"

	return &Adapter{
		Name:        "vangogh",
		Description: "Van Gogh Museum collection (infinite scroll)",
		StartURL:    "https://www.vangoghmuseum.nl/nl/collectie",
		Mode:        ModeScroll,
		Workers:     1,
		MaxItems:    5036,
		Listing: Listing{
			Ready:        ".collection-art-object-item-image",
			Item:         ".collection-art-object-item-image",
			ImageAttrs:   []string{"data-src", "src"},
			Dedup:        DedupImage,
			Placeholders: []string{vanGoghPlaceholder},
			SettleDelay:  5 * time.Second,
		},
		Detail: Detail{
			Ready: ".art-object-page-content-title, .art-object-page-content-creator-info, .inline-list__item, .art-object-page-content-details, .definition-list-item-value",
			Fields: FieldMap{
				Title: &FieldRule{Selector: ".art-object-page-content-title", Transform: TransformTrim},
				ArtistName: &FieldRule{
					Selector:  creator,
					Transform: TransformCreatorArtist,
					Fallback:  &FieldRule{Selector: creatorFallback, Transform: TransformCreatorArtist},
				},
				Date: &FieldRule{
					Selector:  creator,
					Transform: TransformCreatorDate,
					Fallback:  &FieldRule{Selector: creatorFallback, Transform: TransformCreatorDate},
				},
				Location: &FieldRule{Value: "Van Gogh Museum, Amsterdam"},
			},
			Sections: []Section{
				{
					Name:   "objectgegevens",
					Toggle: vanGoghAccordion("Objectgegevens") + "/button",
					Marker: "//h5[contains(text(), 'Herkomst')]/following-sibling::p",
					Fields: FieldMap{
						Technique: &FieldRule{
							Selector: "//dt[contains(., 'Technique') or contains(., 'technique')]/following-sibling::dd[1]",
						},
						Dimensions: &FieldRule{
							Selector:  "//dt[contains(., 'Dimensions') or contains(., 'dimensions')]/following-sibling::dd[1]",
							Transform: TransformDimensionsCM,
						},
						Provenance: &ListRule{
							Selector: "//h5[contains(text(), 'Herkomst') or contains(text(), 'Provenance')]/following-sibling::p",
						},
					},
				},
				{
					Name:   "tentoonstellingen",
					Toggle: vanGoghAccordion("Tentoonstellingen") + "/button",
					Marker: ".accordion-item-content-expanded",
					Fields: FieldMap{
						Exhibitions: &ListRule{
							Selector: vanGoghAccordion("Tentoonstellingen") +
								"/ancestor::div[contains(@class, 'accordion-item')][1]//*[contains(@class, 'accordion-item-content-expanded')]//*[contains(@class, 'markdown')]",
						},
					},
				},
				{
					Name:   "literatuur",
					Toggle: vanGoghAccordion("Literatuur") + "/button",
					Marker: ".accordion-item-content-expanded",
					Fields: FieldMap{
						Literature: &ListRule{
							Selector: vanGoghAccordion("Literatuur") +
								"/ancestor::div[contains(@class, 'accordion-item')][1]//*[contains(@class, 'accordion-item-content-expanded')]//p",
						},
					},
				},
			},
		},
	}
}

func ngaHeading(section, text string) *Guard {
	return &Guard{Selector: section + " h3.heading-mimic-h6", Text: text}
}

func ngaCoreFields() FieldMap {
	return FieldMap{
		Title:      &FieldRule{Selector: "h1.object-title", Transform: TransformStripDateSuffix},
		ArtistName: &FieldRule{Selector: "p.attribution"},
		Date:       &FieldRule{Selector: "h1.object-title .date"},
		Technique:  &FieldRule{Selector: ".object-attr.medium .object-attr-value"},
		Dimensions: &FieldRule{Selector: ".object-attr.dimensions .object-attr-value"},
		Location: &FieldRule{
			Selector:  "p.onview",
			Transform: TransformGalleryLocation,
			Prefix:    "National Gallery of Art, ",
		},
		Provenance: &ListRule{
			Selector: "#provenance p",
			Guard:    ngaHeading("#provenance", "Provenance"),
		},
		Exhibitions: &ListRule{
			Selector:  "#history dl.year-list",
			Transform: TransformYearList,
			Guard:     ngaHeading("#history", "Exhibition History"),
		},
		Literature: &ListRule{
			Selector:  "#bibliography dl.year-list",
			Transform: TransformYearList,
			Guard:     ngaHeading("#bibliography", "Bibliography"),
		},
	}
}

func ngaListing(item string) Listing {
	return Listing{
		Ready:        "ul.returns li",
		Item:         item,
		Image:        "img",
		Link:         "a",
		RequireImage: true,
		Dedup:        DedupLink,
		Next:         ".pagination .results-next",
		NextClick:    ClickScript,
	}
}

func ngaAccordion(id string) Section {
	return Section{
		Name:       id,
		Toggle:     "#" + id,
		ToggleWait: 10 * time.Second,
		Click:      ClickScript,
	}
}

// NGAHighlights walks the National Gallery of Art highlights with a pool of
// detail workers and reads every accordion of the artwork page.
func NGAHighlights() *Adapter {
	fields := ngaCoreFields()
	value := func(class string) FieldRule {
		return FieldRule{Selector: ".object-attr." + class + " .object-attr-value"}
	}
	fields.Attributes = map[string]FieldRule{
		"onView":            {Selector: "p.onview"},
		"creditLine":        value("credit"),
		"accessionNumber":   value("accession"),
		"imageUse":          value("image-use"),
		"copyright":         value("copyright"),
		"artistNationality": {Selector: ".object-attr.artists-makers .nationality"},
		"customPrintsLink":  {Selector: ".object-attr.prints .object-attr-value a", Attr: "href"},
		"artistBirthDate":   {Selector: "#accordion-artists-makers span.birth"},
		"artistDeathDate":   {Selector: "#accordion-artists-makers span.death"},
		"acquisitionDate":   {Selector: "#accordion-acquisition span.acquisition-date"},
	}
	fields.Sections = map[string]ListRule{
		"inscription":      {Selector: "#inscription p", Guard: ngaHeading("#inscription", "Inscription")},
		"marksAndLabels":   {Selector: "#marks p", Guard: ngaHeading("#marks", "Marks and Labels")},
		"technicalSummary": {Selector: "#technical p", Guard: ngaHeading("#technical", "Technical Summary")},
	}
	fields.Links = map[string]LinkRule{
		"associatedNames": {Selector: "#provenance a[href]"},
		"relatedContent": {
			Selector: "#relatedpages #tmsRelatedContent a",
			Guard:    ngaHeading("#relatedpages", "Related Content"),
		},
	}

	drawer := Section{
		Name:       "image-description",
		Toggle:     "#drawer-control-0",
		ToggleWait: 10 * time.Second,
		Click:      ClickScript,
		Fields: FieldMap{
			Attributes: map[string]FieldRule{
				"imageDescription": {Selector: ".drawer-alttext #drawer-content-0 p"},
			},
		},
	}

	return &Adapter{
		Name:        "nga-highlights",
		Description: "National Gallery of Art highlights (paginated, parallel detail workers)",
		StartURL:    "https://www.nga.gov/collection/highlights.html",
		Mode:        ModePaginate,
		Workers:     5,
		MaxPages:    10,
		Listing:     ngaListing("ul.returns li"),
		Detail: Detail{
			Ready:  "h1.object-title",
			Fields: fields,
			Sections: []Section{
				ngaAccordion("accordion-provenance"),
				ngaAccordion("accordion-inscription"),
				ngaAccordion("accordion-exhibition-history"),
				ngaAccordion("accordion-bibliography"),
				ngaAccordion("accordion-related-content"),
				ngaAccordion("accordion-marks"),
				ngaAccordion("accordion-technical"),
				drawer,
			},
		},
	}
}

// NGA walks the National Gallery of Art highlights one artwork at a time and
// reads the core fields only.
func NGA() *Adapter {
	return &Adapter{
		Name:        "nga",
		Description: "National Gallery of Art highlights (paginated, sequential)",
		StartURL:    "https://www.nga.gov/collection/highlights.html",
		Mode:        ModePaginate,
		Workers:     1,
		MaxPages:    3,
		Listing:     ngaListing("ul.returns li .return-image.nga-grid-image"),
		Detail: Detail{
			Ready:  "h1.object-title",
			Fields: ngaCoreFields(),
		},
	}
}

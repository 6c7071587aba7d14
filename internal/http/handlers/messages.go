package handlers

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys are the English texts.
const (
	msgEmptyMood     = "Please express your mood first."
	msgQuotaExceeded = "You've reached your limit of %d mood sketches."
	msgInProgress    = "A sketch is already being generated."
	msgNotFound      = "Sketch not found."
	msgShareFailed   = "Sharing failed. Please download the image."
	msgRateLimited   = "Too many requests. Please try again shortly."
	msgBadRequest    = "Invalid request payload."
	msgInternal      = "Something went wrong. Please try again."
	msgNoImage       = "The image for this sketch is no longer available."
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		msgEmptyMood:     msgEmptyMood,
		msgQuotaExceeded: msgQuotaExceeded,
		msgInProgress:    msgInProgress,
		msgNotFound:      msgNotFound,
		msgShareFailed:   msgShareFailed,
		msgRateLimited:   msgRateLimited,
		msgBadRequest:    msgBadRequest,
		msgInternal:      msgInternal,
		msgNoImage:       msgNoImage,
	},
	language.Indonesian: {
		msgEmptyMood:     "Silakan ungkapkan suasana hatimu terlebih dahulu.",
		msgQuotaExceeded: "Kamu telah mencapai batas %d sketsa suasana hati.",
		msgInProgress:    "Sketsa sedang dibuat.",
		msgNotFound:      "Sketsa tidak ditemukan.",
		msgShareFailed:   "Gagal membagikan. Silakan unduh gambarnya.",
		msgRateLimited:   "Terlalu banyak permintaan. Coba lagi sebentar lagi.",
		msgBadRequest:    "Format permintaan tidak valid.",
		msgInternal:      "Terjadi kesalahan. Silakan coba lagi.",
		msgNoImage:       "Gambar untuk sketsa ini sudah tidak tersedia.",
	},
}

var messages = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, entries := range translations {
		for key, text := range entries {
			if err := b.SetString(tag, key, text); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// localize renders key in the given locale, falling back to English.
func localize(locale, key string, args ...any) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	base, _ := tag.Base()
	tag, _ = language.Compose(base)
	return message.NewPrinter(tag, message.Catalog(messages)).Sprintf(key, args...)
}

package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"

	"github.com/a3tai/pdf-annotations/internal/pdf"
)

// translations holds the non-English messages keyed by their English text.
// Numeric arguments arrive pre-formatted, so every placeholder is %s.
var translations = map[language.Tag]map[string]string{
	language.German: {
		pdf.MsgDetectingOffset:   "Seitenversatz wird ermittelt...",
		pdf.MsgProcessingPage:    "Verarbeite Seite %s von %s...",
		pdf.MsgAnnotationWarning: "Warnung: Annotation auf Seite %s konnte nicht verarbeitet werden: %s",
		pdf.MsgRegionWarning:     "Konnte Text für Annotation auf Seite %s nicht extrahieren: %s",
		pdf.MsgPageWarning:       "Warnung: Annotationen auf Seite %s konnten nicht gelesen werden: %s",
		pdf.MsgLabelsWarning:     "Warnung: Seitenbeschriftungen konnten nicht gelesen werden: %s",
		pdf.MsgFrontMatterLabel:  "Seite %s (Titelseite/Vorspann)",
		pdf.MsgInternalLabel:     "Seite %s (Intern: %s)",

		pdf.MsgReportTitle:       "PDF-Annotationen Export",
		pdf.MsgReportFile:        "Datei",
		pdf.MsgReportDate:        "Datum",
		pdf.MsgReportTotalPages:  "Seitenanzahl",
		pdf.MsgReportStartsAt:    "Seitennummerierung beginnt bei",
		pdf.MsgReportHighlighted: "Markierter Text",
		pdf.MsgReportComment:     "Kommentar",
		pdf.MsgReportAuthor:      "Autor",

		pdf.UnknownAnnotationType:    "Unbekannter Typ",
		"Highlight":                  "Hervorhebung",
		"Underline":                  "Unterstreichung",
		"StrikeOut":                  "Durchstreichung",
		"Squiggly":                   "Wellenlinie",
		"Rectangle/Square":           "Rechteck/Quadrat",
		"Circle/Ellipse":             "Kreis/Ellipse",
		"Line":                       "Linie",
		"Polyline":                   "Polylinie",
		"Text/Sticky Note/Highlight": "Text/Notiz/Hervorhebung",
		"Strike Out":                 "Durchgestrichen",
		"Stamp":                      "Stempel",
		"Caret":                      "Einfügemarke",
		"Ink":                        "Freihand",
		"Popup":                      "Popup",
		"FileAttachment":             "Dateianhang",
		"Sound":                      "Ton",
		"Movie":                      "Film",
		"Widget":                     "Widget",
		"Screen":                     "Bildschirm",
		"PrinterMark":                "Druckermarke",
		"TrapNet":                    "Überfüllungsnetz",
		"Watermark":                  "Wasserzeichen",
		"3D":                         "3D",
		"Redact":                     "Schwärzung",
	},
	language.Turkish: {
		pdf.MsgDetectingOffset:   "Sayfa kayması tespit ediliyor...",
		pdf.MsgProcessingPage:    "Sayfa %s / %s işleniyor...",
		pdf.MsgAnnotationWarning: "Uyarı: %s. sayfadaki not işlenemedi: %s",
		pdf.MsgRegionWarning:     "%s. sayfadaki not için metin çıkarılamadı: %s",
		pdf.MsgPageWarning:       "Uyarı: %s. sayfadaki notlar okunamadı: %s",
		pdf.MsgLabelsWarning:     "Uyarı: Sayfa etiketleri okunamadı: %s",
		pdf.MsgFrontMatterLabel:  "Sayfa %s (Kapak sayfası/Ön bölüm)",
		pdf.MsgInternalLabel:     "Sayfa %s (Dahili: %s)",

		pdf.MsgReportTitle:       "PDF Notları Dışa Aktarımı",
		pdf.MsgReportFile:        "Dosya",
		pdf.MsgReportDate:        "Tarih",
		pdf.MsgReportTotalPages:  "Toplam Sayfa",
		pdf.MsgReportStartsAt:    "Sayfa Numaralandırması Başlangıcı",
		pdf.MsgReportHighlighted: "Vurgulanan Metin",
		pdf.MsgReportComment:     "Yorum",
		pdf.MsgReportAuthor:      "Yazar",

		pdf.UnknownAnnotationType:    "Bilinmeyen Tür",
		"Highlight":                  "Vurgu",
		"Underline":                  "Altı Çizili",
		"StrikeOut":                  "Üstü Çizili",
		"Squiggly":                   "Dalgalı Çizgi",
		"Rectangle/Square":           "Dikdörtgen/Kare",
		"Circle/Ellipse":             "Daire/Elips",
		"Line":                       "Çizgi",
		"Polyline":                   "Çoklu Çizgi",
		"Text/Sticky Note/Highlight": "Metin/Yapışkan Not/Vurgu",
		"Strike Out":                 "Üstünü Çiz",
		"Stamp":                      "Damga",
		"Caret":                      "Ekleme İşareti",
		"Ink":                        "Mürekkep",
		"Popup":                      "Açılır Pencere",
		"FileAttachment":             "Dosya Eki",
		"Sound":                      "Ses",
		"Movie":                      "Film",
		"Widget":                     "Pencere Öğesi",
		"Screen":                     "Ekran",
		"PrinterMark":                "Yazıcı İşareti",
		"TrapNet":                    "Tuzak Ağı",
		"Watermark":                  "Filigran",
		"3D":                         "3B",
		"Redact":                     "Karartma",
	},
}

// newCatalog registers the English source messages and every translation
func newCatalog() (*catalog.Builder, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	for _, key := range pdf.MessageKeys() {
		if err := b.SetString(language.English, key, key); err != nil {
			return nil, fmt.Errorf("failed to register message %q: %w", key, err)
		}
	}

	for tag, messages := range translations {
		for key, msg := range messages {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("failed to register %s message %q: %w", tag, key, err)
			}
		}
	}

	return b, nil
}

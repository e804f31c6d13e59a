package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/sniff-api/sniff-server/internal/playstore"
	"github.com/sniff-api/sniff-server/pkg/apkname"
)

// Manifest is the download manifest for one exact (package, channel, version)
// resolution. Field names follow the public JSON contract.
type Manifest struct {
	SuggestedFilename string           `json:"suggested_filename"`
	AppName           string           `json:"app_name"`
	VersionString     string           `json:"version_string"`
	VersionCode       int              `json:"version_code"`
	Channel           string           `json:"channel"`
	MainAPKURL        string           `json:"main_apk_url"`
	Splits            []SplitFile      `json:"splits"`
	AdditionalFiles   []AdditionalFile `json:"additional_files"`
}

// SplitFile is one split package of a delivery.
type SplitFile struct {
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
}

// AdditionalFile is one expansion file of a delivery.
type AdditionalFile struct {
	Filename    string `json:"filename"`
	DownloadURL string `json:"download_url"`
}

// ResolveDownload builds the manifest for one channel and optional version
// code (0 means the channel's current version). A manifest is only ever
// built from a successful detail lookup on the requested channel; a channel
// that cannot answer fails the request instead of producing a partial
// manifest with a synthesized name.
func (s *Service) ResolveDownload(ctx context.Context, packageName string, ch Channel, versionCode int) (*Manifest, error) {
	details, err := s.DetailsFor(ctx, packageName, ch)
	if err != nil {
		return nil, err
	}

	vc := versionCode
	if vc == 0 {
		vc = details.VersionCode
	}

	delivery, err := s.delivery(ctx, ch, packageName, vc)
	if err != nil {
		switch {
		case errors.Is(err, ErrChannelUnavailable):
			return nil, err
		case errors.Is(err, playstore.ErrVersionNotFound):
			return nil, fmt.Errorf("package %s on %s vc=%d: %w", packageName, ch, vc, ErrVersionNotFound)
		case errors.Is(err, playstore.ErrAppNotFound):
			return nil, fmt.Errorf("package %s on %s: %w", packageName, ch, ErrChannelUnavailable)
		default:
			return nil, fmt.Errorf("resolving delivery for %s on %s: %w", packageName, ch, err)
		}
	}

	appName := apkname.CleanTitle(details.Title)
	m := &Manifest{
		SuggestedFilename: apkname.Build(s.brand, appName, ch.Display(), apkname.CleanVersion(details.VersionString)),
		AppName:           appName,
		VersionString:     details.VersionString,
		VersionCode:       details.VersionCode,
		Channel:           ch.String(),
		MainAPKURL:        delivery.MainURL,
		Splits:            []SplitFile{},
		AdditionalFiles:   []AdditionalFile{},
	}
	for _, sp := range delivery.Splits {
		m.Splits = append(m.Splits, SplitFile{Name: sp.Name, DownloadURL: sp.URL})
	}
	for _, f := range delivery.AdditionalFiles {
		m.AdditionalFiles = append(m.AdditionalFiles, AdditionalFile{Filename: f.Name, DownloadURL: f.URL})
	}
	return m, nil
}

// fdfe.go decodes the protobuf payloads returned by the FDFE endpoints.
//
// There is no published schema for this protocol, so instead of carrying
// generated stubs for hundreds of message types we walk the wire format
// directly with protowire and extract the few fields the gateway needs. Field
// numbers below were observed on the wire and match the community
// reconstructions of the Play API; anything unrecognised is skipped, so
// upstream adding fields does not break decoding.
package playstore

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Envelope and details field numbers.
const (
	fieldWrapperPayload = 1 // ResponseWrapper.payload

	fieldPayloadDetails  = 2  // Payload.detailsResponse
	fieldPayloadDelivery = 21 // Payload.deliveryResponse

	fieldDetailsDoc = 4 // DetailsResponse.docV2

	fieldDocDocid           = 1  // DocV2.docid (package name)
	fieldDocTitle           = 5  // DocV2.title
	fieldDocCreator         = 6  // DocV2.creator
	fieldDocDescriptionHTML = 7  // DocV2.descriptionHtml
	fieldDocDetails         = 13 // DocV2.details

	fieldDetailsApp = 1 // DocumentDetails.appDetails

	fieldAppDeveloperName    = 1  // AppDetails.developerName
	fieldAppVersionCode      = 3  // AppDetails.versionCode
	fieldAppVersionString    = 4  // AppDetails.versionString
	fieldAppDownloadSize     = 9  // AppDetails.infoDownloadSize
	fieldAppDeveloperEmail   = 10 // AppDetails.developerEmail
	fieldAppDeveloperWebsite = 11 // AppDetails.developerWebsite
	fieldAppDownloadCount    = 12 // AppDetails.infoDownload
	fieldAppPackageName      = 13 // AppDetails.packageName
	fieldAppRecentChanges    = 15 // AppDetails.recentChangesHtml
	fieldAppUpdatedOn        = 16 // AppDetails.infoUpdatedOn
	fieldAppTargetSDK        = 28 // AppDetails.targetSdkVersion
)

// Delivery field numbers.
const (
	fieldDeliveryStatus = 1 // DeliveryResponse.status
	fieldDeliveryData   = 2 // DeliveryResponse.appDeliveryData

	fieldAppDataDownloadSize   = 1  // AndroidAppDeliveryData.downloadSize
	fieldAppDataDownloadURL    = 3  // AndroidAppDeliveryData.downloadUrl
	fieldAppDataAdditionalFile = 4  // AndroidAppDeliveryData.additionalFile
	fieldAppDataSplit          = 15 // AndroidAppDeliveryData.splitDeliveryData

	fieldSplitName        = 1 // SplitDeliveryData.name
	fieldSplitDownloadURL = 5 // SplitDeliveryData.downloadUrl

	fieldAddFileType        = 1 // AppFileMetadata.fileType (0 = main obb, 1 = patch obb)
	fieldAddFileVersionCode = 2 // AppFileMetadata.versionCode
	fieldAddFileDownloadURL = 4 // AppFileMetadata.downloadUrl
)

// Delivery status values observed on the wire.
const (
	deliveryStatusOK                 = 1
	deliveryStatusVersionUnavailable = 2 // exact version code rejected
	deliveryStatusNotAvailable       = 3 // item not deliverable to this account/device
)

// message is a raw protobuf message body walked field by field.
type message []byte

// walk iterates the message's fields, invoking fn for each. Unknown wire
// types or truncated fields abort with an error so corrupt payloads are
// reported instead of silently mis-decoded.
func (m message) walk(fn func(num protowire.Number, typ protowire.Type, value []byte) error) error {
	b := []byte(m)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("malformed tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		size := protowire.ConsumeFieldValue(num, typ, b)
		if size < 0 {
			return fmt.Errorf("malformed field %d: %w", num, protowire.ParseError(size))
		}
		if err := fn(num, typ, b[:size]); err != nil {
			return err
		}
		b = b[size:]
	}
	return nil
}

// bytesField returns the first length-delimited field with the given number.
func (m message) bytesField(want protowire.Number) (message, bool) {
	var out []byte
	found := false
	_ = m.walk(func(num protowire.Number, typ protowire.Type, value []byte) error {
		if !found && num == want && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(value)
			if n >= 0 {
				out, found = v, true
			}
		}
		return nil
	})
	return out, found
}

// repeatedBytesField returns every length-delimited field with the given number,
// preserving wire order.
func (m message) repeatedBytesField(want protowire.Number) []message {
	var out []message
	_ = m.walk(func(num protowire.Number, typ protowire.Type, value []byte) error {
		if num == want && typ == protowire.BytesType {
			if v, n := protowire.ConsumeBytes(value); n >= 0 {
				out = append(out, message(v))
			}
		}
		return nil
	})
	return out
}

// stringField returns the first string field with the given number, or "".
func (m message) stringField(want protowire.Number) string {
	v, ok := m.bytesField(want)
	if !ok {
		return ""
	}
	return string(v)
}

// varintField returns the first varint field with the given number.
func (m message) varintField(want protowire.Number) (uint64, bool) {
	var out uint64
	found := false
	_ = m.walk(func(num protowire.Number, typ protowire.Type, value []byte) error {
		if !found && num == want && typ == protowire.VarintType {
			if v, n := protowire.ConsumeVarint(value); n >= 0 {
				out, found = v, true
			}
		}
		return nil
	})
	return out, found
}

// unwrapPayload validates the outer ResponseWrapper and returns the payload
// message, or nil when the wrapper carries none.
func unwrapPayload(body []byte) (message, error) {
	wrapper := message(body)
	// Fail early on structurally broken bodies (HTML error pages etc.).
	if err := wrapper.walk(func(protowire.Number, protowire.Type, []byte) error { return nil }); err != nil {
		return nil, err
	}
	payload, ok := wrapper.bytesField(fieldWrapperPayload)
	if !ok {
		return nil, nil
	}
	return payload, nil
}

// decodeDetailsResponse extracts AppDetails from a raw details response body.
// Returns (nil, nil) when the payload carries no document, which callers
// interpret as not-found on this track.
func decodeDetailsResponse(body []byte) (*AppDetails, error) {
	payload, err := unwrapPayload(body)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, nil
	}

	detailsResp, ok := payload.bytesField(fieldPayloadDetails)
	if !ok {
		return nil, nil
	}
	doc, ok := detailsResp.bytesField(fieldDetailsDoc)
	if !ok {
		return nil, nil
	}

	out := &AppDetails{
		PackageName:     doc.stringField(fieldDocDocid),
		Title:           doc.stringField(fieldDocTitle),
		Creator:         doc.stringField(fieldDocCreator),
		DescriptionHTML: doc.stringField(fieldDocDescriptionHTML),
	}

	if docDetails, ok := doc.bytesField(fieldDocDetails); ok {
		if app, ok := docDetails.bytesField(fieldDetailsApp); ok {
			out.DeveloperName = app.stringField(fieldAppDeveloperName)
			out.DeveloperEmail = app.stringField(fieldAppDeveloperEmail)
			out.DeveloperWebsite = app.stringField(fieldAppDeveloperWebsite)
			out.DownloadCount = app.stringField(fieldAppDownloadCount)
			out.RecentChangesHTML = app.stringField(fieldAppRecentChanges)
			out.UpdatedOn = app.stringField(fieldAppUpdatedOn)
			out.VersionString = app.stringField(fieldAppVersionString)
			if v, ok := app.varintField(fieldAppVersionCode); ok {
				out.VersionCode = int(v)
			}
			if v, ok := app.varintField(fieldAppDownloadSize); ok {
				out.DownloadSize = int64(v)
			}
			if v, ok := app.varintField(fieldAppTargetSDK); ok {
				out.TargetSDKVersion = int(v)
			}
			if pkg := app.stringField(fieldAppPackageName); pkg != "" {
				out.PackageName = pkg
			}
		}
	}

	return out, nil
}

// decodeDeliveryResponse extracts the delivery status and, when present, the
// delivery data from a raw delivery response body.
func decodeDeliveryResponse(body []byte) (*DeliveryData, int, error) {
	payload, err := unwrapPayload(body)
	if err != nil {
		return nil, 0, err
	}
	if payload == nil {
		return nil, 0, fmt.Errorf("delivery response carried no payload")
	}

	deliveryResp, ok := payload.bytesField(fieldPayloadDelivery)
	if !ok {
		return nil, 0, fmt.Errorf("payload carried no delivery response")
	}

	status := deliveryStatusOK
	if v, ok := deliveryResp.varintField(fieldDeliveryStatus); ok {
		status = int(v)
	}

	appData, ok := deliveryResp.bytesField(fieldDeliveryData)
	if !ok {
		return nil, status, nil
	}

	out := &DeliveryData{
		MainURL: appData.stringField(fieldAppDataDownloadURL),
	}
	if v, ok := appData.varintField(fieldAppDataDownloadSize); ok {
		out.DownloadSize = int64(v)
	}

	for _, split := range appData.repeatedBytesField(fieldAppDataSplit) {
		out.Splits = append(out.Splits, SplitArtifact{
			Name: split.stringField(fieldSplitName),
			URL:  split.stringField(fieldSplitDownloadURL),
		})
	}

	for _, file := range appData.repeatedBytesField(fieldAppDataAdditionalFile) {
		fileType, _ := file.varintField(fieldAddFileType)
		vc, _ := file.varintField(fieldAddFileVersionCode)
		out.AdditionalFiles = append(out.AdditionalFiles, FileArtifact{
			Name: obbName(int(fileType), int(vc)),
			URL:  file.stringField(fieldAddFileDownloadURL),
		})
	}

	return out, status, nil
}

// obbName derives the conventional expansion-file name prefix from the file
// type. The installer expects main.<versionCode> or patch.<versionCode>.
func obbName(fileType, versionCode int) string {
	prefix := "main"
	if fileType == 1 {
		prefix = "patch"
	}
	return fmt.Sprintf("%s.%d.obb", prefix, versionCode)
}

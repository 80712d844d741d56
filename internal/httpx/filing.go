package httpx

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seojoon/ipofeed/internal/charsetx"
	"github.com/seojoon/ipofeed/internal/textutil"
)

// FilingClient fetches disclosure viewer pages by filing reference and strips
// them to plain text for the offering-type classifier.
type FilingClient struct {
	client    *Client
	viewerURL string
	resolver  *charsetx.Resolver
}

// NewFilingClient builds a filing-text fetcher. viewerURL must contain one
// %s verb for the 14-digit reference number.
func NewFilingClient(client *Client, viewerURL string, resolver *charsetx.Resolver) *FilingClient {
	return &FilingClient{client: client, viewerURL: viewerURL, resolver: resolver}
}

// FilingText returns the normalized plain text of the filing document.
func (f *FilingClient) FilingText(ctx context.Context, rcpNo string) (string, error) {
	body, contentType, err := f.client.GetBody(ctx, fmt.Sprintf(f.viewerURL, rcpNo))
	if err != nil {
		return "", fmt.Errorf("filing %s: %w", rcpNo, err)
	}
	decoded := f.resolver.Resolve(body, contentType)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(decoded.Text))
	if err != nil {
		return textutil.Normalize(decoded.Text), nil
	}
	doc.Find("script, style").Remove()
	return textutil.Normalize(doc.Text()), nil
}

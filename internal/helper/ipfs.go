package helper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ipfs/go-cid"
)

const IpfsScheme = "ipfs://"

func IsUrl(uri string) bool {
	u, err := url.Parse(uri)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func IsIpfs(uri string) bool {
	return strings.HasPrefix(uri, IpfsScheme)
}

// IsCid reports whether s parses as a v0 or v1 content identifier.
func IsCid(s string) bool {
	_, err := cid.Decode(s)
	return err == nil
}

// IpfsPath strips the ipfs:// scheme and an optional leading "ipfs/" segment.
func IpfsPath(uri string) string {
	path := strings.TrimPrefix(uri, IpfsScheme)
	return strings.TrimPrefix(path, "ipfs/")
}

func IpfsUri(contentId string) string {
	return IpfsScheme + contentId
}

// GatewayUrl converts a content identifier, or an ipfs:// uri, into a fetchable gateway url.
// The gateway may be a bare host or carry its own scheme.
func GatewayUrl(gateway string, contentId string) string {
	host := strings.TrimRight(gateway, "/")
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}

	return fmt.Sprintf("%s/ipfs/%s", host, IpfsPath(contentId))
}

package telephony

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"sort"

	"swooche-router/pkg/logger"

	"github.com/gin-gonic/gin"
)

const headerSignature = "X-Twilio-Signature"

// ComputeSignature implements Twilio's webhook signature scheme: HMAC-SHA1
// over the full callback URL concatenated with the sorted POST parameter
// names and values, keyed by the account auth token, base64 encoded.
func ComputeSignature(authToken, url string, form map[string][]string) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(url))
	for _, k := range keys {
		for _, v := range form[k] {
			mac.Write([]byte(k))
			mac.Write([]byte(v))
		}
	}
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// RequireTwilioSignature rejects webhook posts whose X-Twilio-Signature does
// not match. baseURL is the public URL the carrier was configured with
// (scheme + host); the request path and form are taken from the request.
//
// When authToken is empty the middleware is a no-op, which keeps local
// development working without carrier credentials.
func RequireTwilioSignature(authToken, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authToken == "" {
			c.Next()
			return
		}
		if err := c.Request.ParseForm(); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		url := baseURL + c.Request.URL.RequestURI()
		want := ComputeSignature(authToken, url, c.Request.PostForm)
		got := c.GetHeader(headerSignature)

		if subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
			logger.FromGin(c).Warn("twilio signature mismatch", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid signature"})
			return
		}
		c.Next()
	}
}

package widget

import (
	"fmt"
	"strconv"

	"github.com/go-go-golems/librarian-chat/pkg/chatapi"
)

const pngDataURIPrefix = "data:image/png;base64,"

// HealthStatus formats the status line for a healthy backend.
func (l Labels) HealthStatus(count int) string {
	return l.BackendOK + " • " + strconv.Itoa(count) + " " + l.ItemsIndexed
}

// Reply turns a chat result into the bot row and, for normal replies carrying an image,
// the image row. The branches are checked in order: HTTP status, moderation block,
// application error, normal message.
func (l Labels) Reply(res *chatapi.ChatResult) (string, *Image) {
	body := res.Body
	switch {
	case !res.OK():
		return l.ServerErrorPrefix + strconv.Itoa(res.StatusCode), nil
	case body.IsBlocked():
		if msg := chatapi.Str(body.Message); msg != "" {
			return msg, nil
		}
		return l.BlockedFallback, nil
	case body.HasError():
		return l.ErrorPrefix + chatapi.Str(body.Error), nil
	}

	text := chatapi.Str(body.Message)
	if body.HasSummary() {
		text += fmt.Sprintf("\n\n— %s \"%s\":\n%s", l.FullSummaryIntro, chatapi.Str(body.RecommendedTitle), chatapi.Str(body.FullSummary))
	}
	if text == "" {
		text = l.NoResponseFallback
	}
	if !body.HasImage() {
		return text, nil
	}
	return text, l.image(body)
}

func (l Labels) image(body chatapi.ChatResponse) *Image {
	img := &Image{}
	if u := chatapi.Str(body.ImageURL); u != "" {
		img.Src = u
	} else {
		img.Src = pngDataURIPrefix + chatapi.Str(body.ImageB64)
	}
	if title := chatapi.Str(body.RecommendedTitle); title != "" {
		img.Alt = l.ImageAltPrefix + title
	} else {
		img.Alt = l.ImageAltPrefix + l.ImageAltFallback
	}
	return img
}

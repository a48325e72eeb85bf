package inference

import (
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// systemPrompt instructs the model to extract place information and to
// prefer evidence legibly present in images over text inference, returning
// null instead of a guess for any field without direct evidence.
const systemPrompt = `You are a place-information extraction assistant.

Given a social media post (text, hashtags, and optionally photos), identify the single place of business or point of interest the post is about.

Rules:
1. Prefer information that is legibly visible in the photos (signage, menus, storefronts, receipts) over anything inferred from the text.
2. For any field you cannot support with direct evidence, return null. Never guess, never invent placeholder values.
3. The "name" field is mandatory whenever a place is identifiable. If no place can be identified at all, still return your best-supported name candidate or the request will be treated as failed.
4. Respond with ONLY a JSON object, no prose, in this exact shape:

{
  "name": "string, the place name",
  "address": "string or null",
  "categories": ["array of category strings"] or null,
  "businessHours": "string or null",
  "phone": "string or null",
  "keywords": ["array of descriptive keywords"] or null,
  "description": "one-paragraph summary of the place",
  "confidence": 0.0
}

"confidence" is your own certainty in [0,1] that the extraction is correct.`

// BuildPlacePrompt creates the user prompt for one analysis request. Images
// are attached separately as inline parts, in the order referenced here.
func BuildPlacePrompt(req Request) string {
	var sb strings.Builder

	sb.WriteString("## Place Analysis Task\n\n")
	sb.WriteString(fmt.Sprintf("Identify the place described by this %s post. %d photo(s) are attached.\n\n",
		platformLabel(req.Platform), len(req.Images)))

	sb.WriteString("### Post Text\n\n")
	if req.Text.Body != "" {
		sb.WriteString(req.Text.Body)
		sb.WriteString("\n\n")
	} else {
		sb.WriteString("No text provided. Rely on the attached photos.\n\n")
	}

	if len(req.Text.Hashtags) > 0 {
		sb.WriteString("### Hashtags\n\n")
		for _, tag := range req.Text.Hashtags {
			sb.WriteString("#" + tag + " ")
		}
		sb.WriteString("\n\n")
	}

	if len(req.Text.Keywords) > 0 {
		sb.WriteString("### Extracted Keywords\n\n")
		sb.WriteString(strings.Join(req.Text.Keywords, ", "))
		sb.WriteString("\n\n")
	}

	if len(req.Text.LocationHints) > 0 {
		sb.WriteString("### Location Hints\n\n")
		sb.WriteString("These region tokens were detected in the post: ")
		sb.WriteString(strings.Join(req.Text.LocationHints, ", "))
		sb.WriteString("\n\n")
	}

	if len(req.Images) > 0 {
		sb.WriteString("### Media Details\n\n")
		sb.WriteString("Photos are attached in the order listed below.\n\n")
		for i, img := range req.Images {
			sb.WriteString(fmt.Sprintf("**Photo %d** (%dx%d)\n", i+1, img.Width, img.Height))
			if img.GPS != nil {
				sb.WriteString(fmt.Sprintf("- GPS: %.6f, %.6f\n", img.GPS.Latitude, img.GPS.Longitude))
			}
			if img.CaptureTime != nil {
				sb.WriteString(fmt.Sprintf("- Taken: %s\n", img.CaptureTime.Format("Monday, January 2, 2006 at 3:04 PM")))
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("### Instructions\n\n")
	sb.WriteString("1. Look at ALL attached photos for signage, menus, and storefront details\n")
	sb.WriteString("2. Cross-check the post text and hashtags against what the photos show\n")
	sb.WriteString("3. Use GPS coordinates, when present, to disambiguate the address\n")
	sb.WriteString("4. Return null for any field without direct evidence\n")
	sb.WriteString("5. Respond with ONLY the JSON object specified in the system instruction\n")

	return sb.String()
}

// buildContents assembles the single user turn: image parts first, then the
// text prompt.
func buildContents(req Request) []*genai.Content {
	parts := make([]*genai.Part, 0, len(req.Images)+1)
	for _, img := range req.Images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: img.MIMEType(),
				Data:     img.Data,
			},
		})
	}
	parts = append(parts, &genai.Part{Text: BuildPlacePrompt(req)})

	return []*genai.Content{{Role: "user", Parts: parts}}
}

func platformLabel(platform string) string {
	if platform == "" {
		return "social media"
	}
	return platform
}

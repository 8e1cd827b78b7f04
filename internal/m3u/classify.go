package m3u

import (
	"regexp"
	"slices"
	"strings"
)

// DefaultMediaFiles are the link suffixes that mark an entry as a movie.
var DefaultMediaFiles = []string{".mp4", ".avi", ".mkv", ".flv"}

// CountrySeparators are tried in order when looking for a country code in a name.
var CountrySeparators = []string{"|", ":", "-"}

// seriesRegex finds a season/episode marker preceded by the series title.
// The title group is greedy, so the last marker in the name wins.
var seriesRegex = regexp.MustCompile(`(?s)^(.+)([Ss]\d{1,2})([ -]*)([EeXx]\d{1,2})`)

var countryCodes = map[string]bool{
	"UK": true, "FR": true, "PL": true, "US": true, "NL": true, "BE": true, "DE": true, "SE": true,
	"DK": true, "ES": true, "NO": true, "RO": true, "PT": true, "TR": true, "IN": true, "AR": true,
	"IE": true, "IT": true, "AF": true, "CA": true, "AL": true, "GR": true, "HU": true, "BG": true,
	"YU": true, "FI": true, "PK": true, "RU": true, "PB": true,
}

// countryAliases maps composite provider tokens to a country code.
var countryAliases = map[string]string{
	"EX YU":   "YU",
	"EX-YU":   "YU",
	"CA-FR":   "FR",
	"NL H265": "NL",
	"NL HEVC": "NL",
	"SE VIP":  "SE",
	"NO VIP":  "NO",
	"PL VIP":  "PL",
	"RO(L)":   "RO",
}

// Override keys understood by [Classifier.Classify].
const (
	OverrideCountry = "country"
	OverrideSeason  = "season"
	OverrideEpisode = "episode"
	OverrideGenre   = "genre"
	OverrideType    = "type"
	OverrideNumber  = "number"
)

// Overrides are caller supplied values applied after classification.
//
// Keys other than the Override* constants are stored as attributes.
type Overrides map[string]string

// Classifier derives type, season, episode, genre and country for records.
type Classifier struct {
	mediaFiles []string
}

// NewClassifier creates a classifier recognising [DefaultMediaFiles] plus any extra extensions.
func NewClassifier(extra ...string) *Classifier {
	files := slices.Clone(DefaultMediaFiles)
	for _, ext := range extra {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if !slices.Contains(files, ext) {
			files = append(files, ext)
		}
	}
	return &Classifier{mediaFiles: files}
}

// MediaFiles returns the extensions that mark a movie link.
func (c *Classifier) MediaFiles() []string {
	return slices.Clone(c.mediaFiles)
}

// IsMediaFile reports whether link ends with one of the configured extensions.
func (c *Classifier) IsMediaFile(link string) bool {
	for _, ext := range c.mediaFiles {
		if strings.HasSuffix(link, ext) {
			return true
		}
	}
	return false
}

// Classify enriches a populated record in place.
//
// A season/episode marker in the name makes the record a series episode and
// its group becomes the series title. Otherwise the link decides between a
// movie and a channel; movies get their group prefixed with "Movies: ". Then
// a country code is split off the name. Overrides are applied last.
//
// Classify is not idempotent: running it twice on the same record strips a
// second country token and re-derives the group from the changed values.
func (c *Classifier) Classify(r *Record, overrides Overrides) error {
	prior := r.Group()

	if m := seriesRegex.FindStringSubmatch(r.name); m != nil {
		r.itemType = TypeSeriesEpisode
		r.season = strings.TrimSpace(m[2])
		r.episode = strings.TrimSpace(m[4])
		r.genre = prior
		r.put(AttrGroupTitle, attrText(m[1]))
	} else {
		r.itemType = TypeChannel
		if c.IsMediaFile(r.link) {
			r.itemType = TypeMovie
		}
		r.genre = prior
		if r.itemType == TypeMovie {
			r.put(AttrGroupTitle, attrText("Movies: "+prior))
		}
	}

	for _, sep := range CountrySeparators {
		if rest, country, ok := SplitCountry(r.name, sep); ok {
			r.name = rest
			r.country = country
			break
		}
	}

	return r.Apply(overrides)
}

// SplitCountry splits name on the first sep and checks both halves for a country code.
//
// Known composite tokens such as "EX YU" or "NL HEVC" are translated first.
// When the prefix is a code, the suffix is returned as the remaining name;
// otherwise a code in the suffix returns the prefix.
func SplitCountry(name, sep string) (rest, country string, ok bool) {
	prefix, suffix, found := strings.Cut(name, sep)
	if !found {
		return name, "", false
	}
	prefix = strings.TrimSpace(prefix)
	suffix = strings.TrimSpace(suffix)

	if alias, ok := countryAliases[prefix]; ok {
		prefix = alias
	}
	if alias, ok := countryAliases[suffix]; ok {
		suffix = alias
	}

	switch {
	case len(prefix) == 2 && countryCodes[prefix]:
		return suffix, prefix, true
	case len(suffix) == 2 && countryCodes[suffix]:
		return prefix, suffix, true
	default:
		return name, "", false
	}
}

package jikan

// Jikan v4 API response types (https://docs.api.jikan.moe/).

type envelope struct {
	Data *Anime `json:"data"`
}

type listEnvelope struct {
	Data []Anime `json:"data"`
}

// Anime is the wire shape of a Jikan "full anime" record. Nested blocks are
// pointers so that their absence is distinguishable from zero values.
type Anime struct {
	MALID         int        `json:"mal_id"`
	URL           string     `json:"url"`
	Images        *images    `json:"images"`
	Title         string     `json:"title"`
	TitleEnglish  string     `json:"title_english"`
	TitleJapanese string     `json:"title_japanese"`
	TitleSynonyms []string   `json:"title_synonyms"`
	Episodes      *int       `json:"episodes"`
	Status        string     `json:"status"`
	Airing        bool       `json:"airing"`
	Aired         *aired     `json:"aired"`
	Duration      string     `json:"duration"`
	Rating        string     `json:"rating"`
	Score         float64    `json:"score"`
	ScoredBy      int        `json:"scored_by"`
	Synopsis      string     `json:"synopsis"`
	Background    string     `json:"background"`
	Season        string     `json:"season"`
	Year          int        `json:"year"`
	Broadcast     *broadcast `json:"broadcast"`
	Studios       []namedRef `json:"studios"`
	Genres        []namedRef `json:"genres"`
	Streaming     []namedRef `json:"streaming"`
}

type images struct {
	JPG *imageSet `json:"jpg"`
}

type imageSet struct {
	ImageURL      string `json:"image_url"`
	SmallImageURL string `json:"small_image_url"`
	LargeImageURL string `json:"large_image_url"`
}

type aired struct {
	From   string `json:"from"`
	To     string `json:"to"`
	String string `json:"string"`
}

type broadcast struct {
	Day      string `json:"day"`
	Time     string `json:"time"`
	Timezone string `json:"timezone"`
	String   string `json:"string"`
}

type namedRef struct {
	MALID int    `json:"mal_id"`
	Type  string `json:"type"`
	Name  string `json:"name"`
	URL   string `json:"url"`
}

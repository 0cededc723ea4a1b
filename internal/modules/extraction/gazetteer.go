package extraction

// knownPlaces is the closed fallback gazetteer, matched case-insensitively on word boundaries.
var knownPlaces = []string{
	// cities
	"New York", "Paris", "London", "Tokyo", "Rome", "Barcelona", "Amsterdam", "Berlin",
	"Prague", "Vienna", "Madrid", "Florence", "Venice", "Milan", "Naples", "Athens",
	"Istanbul", "Dubai", "Singapore", "Hong Kong", "Bangkok", "Sydney", "Melbourne",
	"Cairo", "Marrakech", "Cape Town", "Rio de Janeiro", "Buenos Aires", "Lima", "Cusco",

	// islands and sites
	"Sicily", "Santorini", "Mykonos", "Machu Picchu", "Galapagos",

	// the Americas
	"Peru", "Ecuador", "Colombia", "Brazil", "Argentina", "Chile", "Mexico", "Costa Rica",
	"Panama", "Guatemala", "Belize", "Honduras", "Nicaragua", "El Salvador", "Cuba",
	"Jamaica", "Dominican Republic", "Puerto Rico", "Trinidad", "Barbados", "Bahamas",
	"Bermuda", "Canada", "United States",

	// Europe
	"Iceland", "Norway", "Sweden", "Finland", "Denmark", "Netherlands", "Belgium",
	"Switzerland", "Austria", "Czech Republic", "Poland", "Hungary", "Croatia", "Slovenia",
	"Slovakia", "Estonia", "Latvia", "Lithuania", "Portugal", "Spain", "France", "Italy",
	"Germany", "United Kingdom", "Ireland", "Scotland", "Wales",

	// Asia and Oceania
	"Australia", "New Zealand", "Japan", "South Korea", "China", "India", "Thailand",
	"Vietnam", "Cambodia", "Laos", "Myanmar", "Malaysia", "Indonesia", "Philippines",
	"Taiwan", "Mongolia", "Nepal", "Bhutan", "Sri Lanka", "Maldives",

	// Africa and the Middle East
	"Mauritius", "Seychelles", "Madagascar", "Kenya", "Tanzania", "Uganda", "Rwanda",
	"Ethiopia", "Morocco", "Tunisia", "Algeria", "Egypt", "Jordan", "Israel", "Lebanon",
	"Turkey", "Georgia", "Armenia", "Azerbaijan",

	// Central and South Asia
	"Kazakhstan", "Uzbekistan", "Kyrgyzstan", "Tajikistan", "Turkmenistan", "Afghanistan",
	"Pakistan", "Bangladesh",
}

// stopWords suppresses capitalized function words, time words, and trip-domain words.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "and", "or", "but", "for", "with", "from", "to", "in", "at", "on", "i", "we", "my", "our",
		"next", "this", "that", "week", "month", "year", "day", "time", "today", "tomorrow", "weekend",
		"trip", "vacation", "holiday", "travel", "visit", "go", "want", "plan", "book",
		"january", "february", "march", "april", "may", "june", "july", "august",
		"september", "october", "november", "december",
		"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	} {
		stopWords[w] = struct{}{}
	}
}

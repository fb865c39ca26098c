package classify

// englishLexicon holds common English words. Words that are also romanized
// Sinhala ("note", "gas", "nil", "api", "me", "man", "one", "bath") must not
// be listed.
var englishLexicon = map[string]struct{}{}

func init() {
	for _, list := range [][]string{
		// pronouns, determiners and other function words
		{
			"a", "about", "above", "across", "after", "again", "against", "ago", "all",
			"almost", "alone", "along", "already", "also", "always", "am", "among",
			"an", "and", "another", "any", "anyone", "anything", "are", "around", "as",
			"at", "away", "back", "be", "because", "been", "before", "behind", "being",
			"below", "best", "better", "between", "both", "but", "by", "can", "could",
			"did", "do", "does", "doing", "done", "down", "during", "each", "either",
			"else", "enough", "ever", "every", "everyone", "everything", "few", "for",
			"from", "had", "has", "have", "he", "her", "here", "hey", "hi", "him",
			"his", "how", "however", "i", "if", "in", "inside", "into", "is", "it",
			"its", "just", "less", "many", "may", "maybe", "more", "most", "much",
			"must", "my", "never", "next", "no", "none", "not", "nothing", "now", "of",
			"off", "often", "oh", "ok", "okay", "on", "once", "only", "or", "other",
			"our", "out", "outside", "over", "own", "perhaps", "quite", "really",
			"same", "she", "should", "since", "so", "some", "someone", "something",
			"sometimes", "soon", "still", "than", "that", "the", "their", "them",
			"then", "there", "these", "they", "this", "those", "though", "through",
			"to", "together", "too", "under", "until", "up", "us", "usually", "very",
			"was", "we", "well", "were", "what", "when", "where", "which", "while",
			"who", "whole", "why", "will", "with", "without", "would", "yes", "yet",
			"you", "your", "yours",
		},
		// days, seasons and times
		{
			"afternoon", "april", "august", "autumn", "birthday", "day", "days",
			"evening", "friday", "holiday", "hour", "minute", "month", "morning",
			"night", "noon", "saturday", "september", "spring", "summer", "sunday",
			"thursday", "time", "today", "tomorrow", "tonight", "tuesday", "wednesday",
			"week", "weekend", "winter", "year", "years", "yesterday",
		},
		// verbs
		{
			"act", "add", "agree", "arrive", "ask", "began", "begin", "believe",
			"bought", "break", "bring", "brought", "build", "buy", "call", "called",
			"came", "care", "carry", "catch", "cause", "change", "check", "choose",
			"clean", "close", "come", "coming", "cook", "cried", "cry", "cut", "dance",
			"decide", "die", "draw", "dream", "drink", "drive", "drop", "eat", "enjoy",
			"fall", "feel", "fight", "fill", "find", "finish", "fly", "follow",
			"forget", "found", "gave", "get", "getting", "give", "go", "goes", "going",
			"gone", "got", "grow", "happen", "hear", "heard", "help", "hold", "hope",
			"hurry", "hurt", "join", "jump", "keep", "knew", "know", "laugh", "learn",
			"leave", "let", "like", "listen", "live", "look", "looking", "lose",
			"lost", "love", "made", "make", "making", "mean", "meet", "miss", "move",
			"need", "open", "pass", "pay", "play", "playing", "please", "put", "read",
			"remember", "rest", "ride", "run", "said", "saw", "say", "see", "seen",
			"sell", "send", "show", "shut", "sing", "sit", "sleep", "smile", "speak",
			"spend", "stand", "start", "stay", "stop", "study", "swim", "take",
			"taking", "talk", "teach", "tell", "thank", "thanks", "think", "told",
			"took", "touch", "translate", "travel", "tried", "try", "trying", "turn",
			"understand", "use", "used", "visit", "wait", "waiting", "walk", "want",
			"wash", "watch", "watching", "wear", "welcome", "went", "win", "wish",
			"work", "working", "write",
		},
		// nouns and adjectives
		{
			"action", "age", "air", "angry", "animal", "answer", "apple", "area",
			"arm", "art", "aunt", "baby", "bad", "bag", "ball", "bank", "beach",
			"beautiful", "become", "bed", "big", "bike", "bird", "black", "blue",
			"boat", "body", "book", "born", "bottle", "box", "boy", "bread",
			"breakfast", "brother", "brown", "building", "bus", "business", "busy",
			"cake", "camera", "car", "card", "careful", "case", "cat", "centre",
			"certain", "chair", "cheap", "child", "children", "church", "city",
			"class", "clear", "clock", "closed", "clothes", "cloud", "coffee", "cold",
			"colour", "company", "computer", "cool", "corner", "country", "course",
			"cousin", "cow", "cup", "dad", "dark", "daughter", "dead", "dear", "deep",
			"different", "difficult", "dinner", "dirty", "doctor", "dog", "door",
			"dress", "driver", "dry", "ear", "early", "earth", "easy", "egg", "eight",
			"email", "end", "english", "exam", "example", "eye", "face", "fact",
			"family", "far", "farm", "fast", "father", "favourite", "feet", "field",
			"file", "fine", "fire", "first", "fish", "five", "floor", "flower", "food",
			"foot", "four", "free", "fresh", "friend", "friends", "front", "fruit",
			"full", "fun", "funny", "game", "garden", "girl", "glad", "glass", "good",
			"great", "green", "ground", "group", "hair", "half", "hand", "happy",
			"hard", "hat", "having", "head", "heart", "heavy", "hello", "high", "hill",
			"home", "horse", "hospital", "hot", "hotel", "house", "hundred", "hungry",
			"husband", "idea", "important", "input", "interesting", "island", "job",
			"key", "kind", "kitchen", "lady", "lake", "language", "large", "last",
			"late", "later", "left", "leg", "lesson", "letter", "library", "life",
			"light", "line", "little", "long", "lot", "loud", "low", "lunch", "market",
			"meal", "meeting", "milk", "mind", "money", "mother", "mountain", "mouth",
			"movie", "music", "name", "near", "new", "news", "nice", "nine", "noise",
			"north", "nose", "number", "office", "old", "orange", "page", "paper",
			"parent", "park", "part", "party", "past", "pen", "pencil", "people",
			"person", "phone", "photo", "picture", "piece", "pink", "pizza", "place",
			"plan", "pocket", "point", "police", "poor", "possible", "post", "pretty",
			"price", "problem", "question", "quick", "quiet", "radio", "rain", "ready",
			"real", "red", "restaurant", "rice", "right", "river", "road", "room",
			"round", "sad", "school", "sea", "second", "seven", "shirt", "shoe",
			"shoes", "shop", "short", "sick", "side", "simple", "sister", "six",
			"slow", "small", "snow", "son", "song", "sorry", "sound", "south", "sport",
			"station", "story", "street", "strong", "student", "sugar", "sun",
			"supper", "sure", "sweet", "table", "tall", "taxi", "tea", "teacher",
			"team", "telephone", "ten", "test", "thing", "things", "third", "three",
			"ticket", "tired", "top", "town", "train", "tree", "trip", "true",
			"twelve", "twenty", "two", "umbrella", "uncle", "useful", "village",
			"wall", "warm", "water", "way", "weather", "west", "white", "wife",
			"window", "woman", "women", "wonderful", "word", "words", "world", "wrong",
			"yellow", "young",
		},
	} {
		for _, w := range list {
			englishLexicon[w] = struct{}{}
		}
	}
}

// benignPunctuation may follow or separate romanized words without turning
// the phrase into symbol noise.
const benignPunctuation = ".,?!'"

// codePunctuation marks programming-language syntax.
const codePunctuation = "=;{}()<>[]"

// vowels of the romanized alphabet. Upper case vowels carry the long/retroflex
// conventions used by some Singlish schemes.
const vowels = "aeiouAEIOU"

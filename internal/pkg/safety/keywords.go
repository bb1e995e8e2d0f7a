package safety

// Phrases are matched as whole words, case-insensitively; inner spaces match any whitespace run.

var crisisPhrases = []string{
	"suicide",
	"suicidal",
	"kill myself",
	"killing myself",
	"kill yourself",
	"want to die",
	"wish i was dead",
	"better off dead",
	"end my life",
	"no reason to live",
	"hurt myself",
	"hurting myself",
	"self harm",
	"self-harm",
	"cut myself",
	"cutting myself",
}

var inappropriatePhrases = []string{
	// violence
	"kill", "killed", "killing", "murder", "blood", "bloody", "gun", "guns", "knife",
	"weapon", "weapons", "shoot", "shooting", "stab", "stabbed", "punch him", "punch her",
	"beat up", "die", "dead", "death",
	// abuse
	"abuse", "abused", "molest", "kidnap", "kidnapped",
	// adult content
	"sex", "sexy", "naked", "nude", "porn", "drugs", "drunk", "alcohol", "beer", "wine",
	"cigarette", "cigarettes",
	// exclusion and bullying
	"nobody likes you", "you don't belong", "you can't play with us", "go away loser",
	"hate you", "i hate you",
}

var toxicPhrases = []string{
	// derogatory
	"stupid", "idiot", "dumb", "loser", "ugly", "fat", "freak", "weirdo", "pathetic",
	"worthless", "useless",
	// dismissive
	"shut up", "nobody cares", "who cares", "stop crying", "get over it", "crybaby",
	"big baby", "don't be a baby",
	// shaming
	"ashamed", "shame on you", "you should feel bad", "bad boy", "bad girl", "naughty",
	"disappointment", "failure",
	// threatening
	"or else", "you'll be sorry", "you will be sorry", "i'll tell on you", "you'll regret",
}

var pseudosciencePhrases = []string{
	"chakra", "chakras", "aura", "auras", "energy healing", "healing energy", "negative energy",
	"positive energy", "crystal", "crystals", "reiki", "third eye", "vibration", "vibrations",
	"manifest", "manifesting", "cleanse your energy", "spirit guide",
}

// genericPraiseWords make up boilerplate praise such as "Good job, well done!".
var genericPraiseWords = map[string]struct{}{
	"good": {}, "great": {}, "job": {}, "well": {}, "done": {}, "nice": {}, "work": {},
	"you": {}, "did": {}, "it": {}, "awesome": {}, "amazing": {}, "excellent": {},
	"keep": {}, "up": {}, "the": {}, "super": {}, "wow": {}, "yay": {}, "fantastic": {},
	"perfect": {}, "a": {}, "are": {}, "star": {},
}

package scenario

// Character is a member of the fixed story roster. Image fields are asset
// references resolved by the client.
type Character struct {
	Name      string `json:"name" yaml:"name"`
	Portrait  string `json:"portrait" yaml:"portrait"`
	FullBody  string `json:"fullBody" yaml:"full_body"`
	Biography string `json:"biography" yaml:"biography"`
}

// Roster is the cast every scenario draws from. The narrative engine is
// instructed to attribute each dialogue line to one of these characters.
var Roster = []Character{
	{
		Name:      "Rani",
		Portrait:  "/assets/characters/rani_portrait.png",
		FullBody:  "/assets/characters/rani_full.png",
		Biography: "The learner's ambitious business partner. Optimistic, pushes for growth.",
	},
	{
		Name:      "Ali",
		Portrait:  "/assets/characters/ali_portrait.png",
		FullBody:  "/assets/characters/ali_full.png",
		Biography: "A cautious accountant friend. Worries about cash flow and risk.",
	},
	{
		Name:      "Yash",
		Portrait:  "/assets/characters/yash_portrait.png",
		FullBody:  "/assets/characters/yash_full.png",
		Biography: "A well-connected supplier. Brings opportunities, not all of them clean.",
	},
	{
		Name:      "Nisha",
		Portrait:  "/assets/characters/nisha_portrait.png",
		FullBody:  "/assets/characters/nisha_full.png",
		Biography: "A demanding first customer. Her satisfaction makes or breaks reputation.",
	},
	{
		Name:      "Amar",
		Portrait:  "/assets/characters/amar_portrait.png",
		FullBody:  "/assets/characters/amar_full.png",
		Biography: "The guide. Steps in for scaffolded hints and the closing summary.",
	},
}

// CharacterNames returns the roster names in order.
func CharacterNames() []string {
	names := make([]string, len(Roster))
	for i, c := range Roster {
		names[i] = c.Name
	}
	return names
}

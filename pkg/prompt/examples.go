package prompt

// Example is one English phrase paired with the answer the model should imitate:
// the romaji and kana rendering followed by one line per component.
type Example struct {
	Query  string `json:"query"`
	Output string `json:"output"`
}

// DefaultExamples is the fixed few-shot table, in the order it is rendered.
var DefaultExamples = []Example{
	{
		Query: "Good Morning",
		Output: `Ohayou gozaimasu. (おはようございます)
Ohayou (おはよう) is a casual way to say good morning among friends and family.
Adding gozaimasu (ございます) makes it more polite and formal, suitable for use in professional or respectful settings.`,
	},
	{
		Query: "My name is Jacob",
		Output: `Watashi no namae wa Jeikobu desu.(わたしのなまえはじぇいこぶです)
Watashi no namae (わたしのなまえ) means my name.
wa (は) is the topic particle.
Jeikobu (じぇいこぶ) is Jacob in hiragana.
desu (です) is a polite sentence-ending particle.`,
	},
	{
		Query: "How are you",
		Output: `Ogenki desu ka? (おげんきですか)
Ogenki (おげんき) means well-being or health.
desu (です) is a polite form of is.
ka (か) is a question particle`,
	},
	{
		Query: "I am learning Japanese because I love anime.",
		Output: `Watashi wa nihongo o benkyou shiteimasu, anime ga daisuki dakara desu. (わたしはにほんごをべんきょうしています、アニメがだいすきだからです)
Watashi wa (わたしは) means "I" with the topic particle wa (は).
Nihongo (にほんご) means Japanese language.
O (を) is the object particle.
Benkyou shiteimasu (べんきょうしています) means "am learning."
Anime (アニメ) refers to Japanese animation.
Ga (が) is the subject particle.
Daisuki (だいすき) means "love a lot."
Dakara desu (だからです) translates to "because it is," indicating the reason.`,
	},
	{
		Query: "Can you recommend a good Japanese restaurant near me?",
		Output: `Watashi no chikaku ni aru osusume no nihon-ryouri no resutoran wa arimasu ka? (わたしのちかくにあるおすすめのにほんりょうりのレストランはありますか)
Watashi no (わたしの) means "my."
Chikaku (ちかく) refers to "nearby" or "close to me."
Aru (ある) means "to exist" (for non-living things).
Osusume (おすすめ) means "recommendation."
Nihon-ryouri (にほんりょうり) means "Japanese cuisine."
Resutoran (レストラン) is the Japanese word for "restaurant."
Wa (は) and ka (か) denote the topic and question, respectively.`,
	},
	{
		Query: "I want to travel to Japan next year and visit Kyoto.",
		Output: `Watashi wa rainen Nihon e ryokou shite, Kyoto o otozuretai desu. (わたしはらいねんにほんへりょこうして、きょうとをおとずれたいです)
Watashi wa (わたしは) introduces the topic as "I."
Rainen (らいねん) means "next year."
Nihon e (にほんへ) indicates movement "to Japan."
Ryokou shite (りょこうして) means "traveling."
Kyoto (きょうと) is the city name, Kyoto.
O (を) is the object particle.
Otozuretai (おとずれたい) means "want to visit."
Desu (です) adds politeness.`,
	},
	{
		Query: "What is the difference between hiragana, katakana, and kanji?",
		Output: `Hiragana to katakana to kanji no chigai wa nan desu ka? (ひらがなとかたかなと漢字のちがいはなんですか)
Hiragana (ひらがな) is one of the Japanese phonetic alphabets used for native words.
Katakana (かたかな) is another phonetic alphabet, mainly used for foreign words and loanwords.
Kanji (漢字) are logographic characters borrowed from Chinese, representing entire words or concepts.
To (と) connects multiple items.
Chigai (ちがい) means "difference."
Wa (は) marks the topic of the sentence.
Nan desu ka (なんですか) means "what is it?" indicating a question.`,
	},
}

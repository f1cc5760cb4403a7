package dialog

import "strings"

// Command is a class of operator input: one button plus its typed synonyms.
// The empty command matches any input and terminates a transition-table scan
// for its state.
type Command string

const (
	CmdAny         Command = ""
	CmdQuit        Command = "quit"
	CmdYes         Command = "yes"
	CmdNo          Command = "no"
	CmdBan         Command = "ban"
	CmdBack        Command = "back"
	CmdNewSearch   Command = "new search"
	CmdShowHistory Command = "show history"
	CmdLiked       Command = "liked"
	CmdDisliked    Command = "disliked"
	CmdBanned      Command = "banned"
	CmdCountry     Command = "country"
	CmdWoman       Command = "woman"
	CmdMan         Command = "man"
	CmdAnybody     Command = "anybody"
	CmdTest        Command = "test"
)

// First synonym doubles as the button label.
var commandSynonyms = map[Command][]string{
	CmdQuit:        {"Выход", "выйти", "хватит", "стоп", "quit", "exit"},
	CmdYes:         {"Да", "ага", "нравится", "давай", "yes", "👍"},
	CmdNo:          {"Нет", "не нравится", "no", "👎"},
	CmdBan:         {"В чёрный список", "бан", "ban"},
	CmdBack:        {"Назад", "вернуться", "back"},
	CmdNewSearch:   {"Новый поиск", "новый", "поиск"},
	CmdShowHistory: {"История поисков", "история"},
	CmdLiked:       {"Понравившиеся", "лайки"},
	CmdDisliked:    {"Непонравившиеся", "дизлайки"},
	CmdBanned:      {"Чёрный список"},
	CmdCountry:     {"Сменить страну", "страна"},
	CmdWoman:       {"Женщина", "женщину", "девушка", "девушку"},
	CmdMan:         {"Мужчина", "мужчину", "парень", "парня"},
	CmdAnybody:     {"Любой", "любого", "все равно", "всё равно"},
	CmdTest:        {"test"},
}

// Matches reports whether the given operator input belongs to this command
// class. Input is matched case-insensitively against every synonym; CmdAny
// matches everything.
func (c Command) Matches(input string) bool {
	if c == CmdAny {
		return true
	}
	input = strings.ToLower(strings.TrimSpace(input))
	for _, synonym := range commandSynonyms[c] {
		if input == strings.ToLower(synonym) {
			return true
		}
	}
	return false
}

// Label returns the button caption for the command.
func (c Command) Label() string {
	synonyms := commandSynonyms[c]
	if len(synonyms) == 0 {
		return string(c)
	}
	return synonyms[0]
}

// Keyboard renders command rows into button label rows for the transport.
func Keyboard(rows ...[]Command) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		labels := make([]string, 0, len(row))
		for _, cmd := range row {
			labels = append(labels, cmd.Label())
		}
		out = append(out, labels)
	}
	return out
}

var (
	kbYesNo     = Keyboard([]Command{CmdYes, CmdNo})
	kbPrompt    = Keyboard([]Command{CmdNewSearch, CmdShowHistory}, []Command{CmdLiked, CmdDisliked, CmdBanned}, []Command{CmdQuit})
	kbBackQuit  = Keyboard([]Command{CmdBack, CmdQuit})
	kbCityInput = Keyboard([]Command{CmdCountry}, []Command{CmdBack, CmdQuit})
	kbSexSelect = Keyboard([]Command{CmdWoman, CmdMan, CmdAnybody}, []Command{CmdBack, CmdQuit})
	kbDecision  = Keyboard([]Command{CmdYes, CmdNo, CmdBan}, []Command{CmdBack, CmdQuit})
)

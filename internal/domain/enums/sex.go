package enums

// Sex ids follow the directory service catalog: 0 is "any", 1 is female, 2 is male.
type Sex int

const (
	SexAny    Sex = 0
	SexFemale Sex = 1
	SexMale   Sex = 2
)

var sexTitles = map[Sex]string{
	SexAny:    "любой",
	SexFemale: "женщина",
	SexMale:   "мужчина",
}

func (s Sex) Title() string {
	title, ok := sexTitles[s]
	if !ok {
		return "любой"
	}
	return title
}

func (s Sex) Valid() bool {
	_, ok := sexTitles[s]
	return ok
}

func SexCount() int {
	return len(sexTitles)
}

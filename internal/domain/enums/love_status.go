package enums

// LoveStatus ids follow the directory service catalog (1..8).
type LoveStatus int

var loveStatusTitles = map[LoveStatus]string{
	1: "не женат/не замужем",
	2: "есть друг/подруга",
	3: "помолвлен(а)",
	4: "женат/замужем",
	5: "всё сложно",
	6: "в активном поиске",
	7: "влюблён(а)",
	8: "в гражданском браке",
}

func (s LoveStatus) Title() string {
	title, ok := loveStatusTitles[s]
	if !ok {
		return "не указано"
	}
	return title
}

func (s LoveStatus) Valid() bool {
	_, ok := loveStatusTitles[s]
	return ok
}

func LoveStatusCount() int {
	return len(loveStatusTitles)
}

func LoveStatusList() []LoveStatus {
	list := make([]LoveStatus, 0, len(loveStatusTitles))
	for id := LoveStatus(1); int(id) <= len(loveStatusTitles); id++ {
		list = append(list, id)
	}
	return list
}

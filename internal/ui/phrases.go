package ui

// Dialogue text resources. Treated as opaque templates by the engine; format
// arguments are documented next to each phrase.
const (
	PhraseGreetings            = "Привет, %s! Я помогу найти тебе пару."                         // operator first name
	PhraseWantToFindPair       = "Хочешь найти себе пару?"
	PhraseHaveHistory          = "У тебя уже есть история поисков. Начнём новый поиск или повторим один из прошлых?"
	PhraseChooseHistoryNumber  = "Введи номер поиска из списка"
	PhraseNoSearchHistory      = "История поисков пока пуста"
	PhraseNoSuchHistory        = "Нет такого поиска в списке"
	PhraseEnterCityNameIn      = "Введи название города (страна: %s)"                            // country name
	PhraseChooseCityNumber     = "Введи номер города из списка"
	PhraseNoSuchCityName       = "Не нашлось ни одного города с таким названием"
	PhraseNoSuchCityInList     = "Нет такого города в списке"
	PhraseEnterCountryName     = "Введи название страны"
	PhraseNoSuchCountryName    = "Не нашлось ни одной страны с таким названием"
	PhraseChooseCountryNumber  = "Введи номер страны из списка"
	PhraseNoSuchCountryInList  = "Нет такой страны в списке"
	PhraseChosenCountry        = "Выбрана страна: %s"                                            // country name
	PhraseChosenCity           = "Выбран город: %s"                                              // city name
	PhraseChooseSexNumber      = "Введи номер из списка или выбери кнопкой, кого ищем"
	PhraseNoSuchSexInList      = "Нет такого варианта в списке"
	PhraseChosenSex            = "Выбран пол: %s"                                                // sex title
	PhraseChooseStatusNumber   = "Введи номер семейного положения из списка"
	PhraseNoSuchStatusInList   = "Нет такого семейного положения в списке"
	PhraseChosenStatus         = "Выбрано семейное положение: %s"                                // status title
	PhraseEnterMinAge          = "Введи минимальный возраст (от 0 до 127)"
	PhraseEnterMaxAge          = "Введи максимальный возраст (от %d до 127)"                     // min age
	PhraseErrorInAge           = "Возраст указан неверно"
	PhraseMinAgeMoreMaxAge     = "Минимальный возраст больше максимального"
	PhraseChosenAges           = "Выбран возраст: от %d до %d лет"                               // min, max
	PhraseStartedSearch        = "Начинаю поиск людей..."
	PhraseSearchParams         = "город: %s, пол: %s, положение: %s, возраст: от %d до %d"       // city, sex, status, min, max
	PhraseFoundPeoples         = "Найдено людей: %d\nновых: %d, понравившихся: %d, непонравившихся: %d, в чёрном списке: %d"
	PhraseNoPeoplesFound       = "Никого не нашлось"
	PhraseNoNewPeoplesFound    = "Новых людей не нашлось, все уже были показаны"
	PhraseDoYouLikeIt          = "Нравится?"
	PhraseLetsStartAgain       = "Все найденные люди уже были показаны. Начнём сначала!"
	PhraseWasAbsent            = "%s, тебя не было больше %d секунд, поэтому начнём сначала"     // name, seconds
	PhraseDontUnderstand       = "Извини, я тебя не понимаю. Выбери команду кнопкой"
	PhraseGoodbye              = "Пока, %s! Возвращайся скорее"                                  // operator first name
	PhraseStorageUnavailable   = "Извини, хранилище сейчас недоступно. Попробуй ещё раз позже"
)

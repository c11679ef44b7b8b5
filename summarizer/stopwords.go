package summarizer

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

var stopwordLists = map[whatlanggo.Lang]string{
	whatlanggo.Eng: `a about above after again against all am an and any are as at be because been before being
below between both but by can could did do does doing down during each few for from further had has have
having he her here hers herself him himself his how i if in into is it its itself just me more most my
myself no nor not now of off on once only or other our ours ourselves out over own same she should so
some such than that the their theirs them themselves then there these they this those through to too
under until up very was we were what when where which while who whom why will with would you your yours
yourself yourselves im its dont thats ok okay yes yeah hey hi hello lol`,
	whatlanggo.Fra: `au aux avec ce ces dans de des du elle en et eux il ils je la le les leur lui ma mais me
même mes moi mon ne nos notre nous on ou par pas pour qu que qui sa se ses son sur ta te tes toi ton tu un
une vos votre vous c d j l à m n s t y été était être avoir ai as avons avez ont est sont cette cet ça oui
non bonjour salut alors donc très bien plus`,
	whatlanggo.Spa: `a al algo como con de del el ella ellos en era es esa ese esta este esto estos fue ha hay
la las le les lo los más me mi mis muy no nos o para pero por que qué se sin sobre su sus también te tu un
una uno y ya yo hola sí`,
	whatlanggo.Deu: `aber als am an auch auf aus bei bin bis bist da das dass dein deine dem den der des die
dir du ein eine einem einen einer er es für hat hatte ich ihr im in ist ja kein mein mich mir mit nach
nicht noch nur oder sein sich sie sind so über um und uns von vor war was wie wir zu zum zur hallo`,
	whatlanggo.Ita: `a ad al alla anche che chi ci come con da dal del della di e è gli ha ho i il in io la le
lei lo lui ma mi mio ne nel no non noi per più quello questo se si sono su ti tu un una uno voi ciao`,
	whatlanggo.Por: `a ao aos as com como da das de do dos e é ela ele eles em entre era essa esse esta este eu
foi há isso já mais mas me meu minha muito na nas não no nos o os ou para pela pelo por que se sem seu sua
também te tem um uma você olá oi`,
}

var stopwords = buildStopwords()

func buildStopwords() map[whatlanggo.Lang]map[string]struct{} {
	sets := make(map[whatlanggo.Lang]map[string]struct{}, len(stopwordLists))
	for lang, list := range stopwordLists {
		set := make(map[string]struct{})
		for _, w := range strings.Fields(list) {
			set[w] = struct{}{}
		}
		sets[lang] = set
	}
	return sets
}

// stopwordsFor picks the list of the detected language, English otherwise.
func stopwordsFor(text string) (whatlanggo.Lang, map[string]struct{}) {
	info := whatlanggo.Detect(text)
	if set, ok := stopwords[info.Lang]; ok {
		return info.Lang, set
	}
	return whatlanggo.Eng, stopwords[whatlanggo.Eng]
}

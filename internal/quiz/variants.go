package quiz

type MultipleChoiceContent struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

type MultipleChoice struct {
	interactive
	MultipleChoiceContent
}

func NewMultipleChoice(c MultipleChoiceContent) *MultipleChoice {
	return &MultipleChoice{MultipleChoiceContent: c}
}

func (*MultipleChoice) Kind() Kind     { return KindMultipleChoice }
func (m *MultipleChoice) content() any { return &m.MultipleChoiceContent }
func (m *MultipleChoice) view() ItemView {
	return ItemView{Kind: KindMultipleChoice, Position: m.position, Question: m.Question, Options: m.Options}
}

// FillSpaceContent holds a text with blanks and the expected token for each blank, in order.
type FillSpaceContent struct {
	Text    string   `json:"text"`
	Answers []string `json:"answers"`
}

type FillSpace struct {
	interactive
	FillSpaceContent
}

func NewFillSpace(c FillSpaceContent) *FillSpace {
	return &FillSpace{FillSpaceContent: c}
}

func (*FillSpace) Kind() Kind     { return KindFillSpace }
func (f *FillSpace) content() any { return &f.FillSpaceContent }
func (f *FillSpace) view() ItemView {
	return ItemView{Kind: KindFillSpace, Position: f.position, Text: f.Text, Blanks: len(f.Answers)}
}

type OpenContent struct {
	Question string `json:"question"`
}

type Open struct {
	interactive
	OpenContent
}

func NewOpen(c OpenContent) *Open {
	return &Open{OpenContent: c}
}

func (*Open) Kind() Kind     { return KindOpen }
func (o *Open) content() any { return &o.OpenContent }
func (o *Open) view() ItemView {
	return ItemView{Kind: KindOpen, Position: o.position, Question: o.Question}
}

type PollContent struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type Poll struct {
	interactive
	PollContent
}

func NewPoll(c PollContent) *Poll {
	return &Poll{PollContent: c}
}

func (*Poll) Kind() Kind     { return KindPoll }
func (p *Poll) content() any { return &p.PollContent }
func (p *Poll) view() ItemView {
	return ItemView{Kind: KindPoll, Position: p.position, Question: p.Question, Options: p.Options}
}

type TrueFalseContent struct {
	Question string `json:"question"`
	Answer   bool   `json:"answer"`
}

type TrueFalse struct {
	interactive
	TrueFalseContent
}

func NewTrueFalse(c TrueFalseContent) *TrueFalse {
	return &TrueFalse{TrueFalseContent: c}
}

func (*TrueFalse) Kind() Kind     { return KindTrueFalse }
func (t *TrueFalse) content() any { return &t.TrueFalseContent }
func (t *TrueFalse) view() ItemView {
	return ItemView{Kind: KindTrueFalse, Position: t.position, Question: t.Question}
}

type WordCloudContent struct {
	Question string `json:"question"`
}

type WordCloud struct {
	interactive
	WordCloudContent
}

func NewWordCloud(c WordCloudContent) *WordCloud {
	return &WordCloud{WordCloudContent: c}
}

func (*WordCloud) Kind() Kind     { return KindWordCloud }
func (w *WordCloud) content() any { return &w.WordCloudContent }
func (w *WordCloud) view() ItemView {
	return ItemView{Kind: KindWordCloud, Position: w.position, Question: w.Question}
}

// Slides are presentational only and do not implement Answerable.

type SlideText1Content struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type SlideText1 struct {
	base
	SlideText1Content
}

func (*SlideText1) Kind() Kind     { return KindSlideText1 }
func (s *SlideText1) content() any { return &s.SlideText1Content }
func (s *SlideText1) view() ItemView {
	return ItemView{Kind: KindSlideText1, Position: s.position, Title: s.Title, Text: s.Text}
}

type SlideText2Content struct {
	Title         string `json:"title"`
	Text          string `json:"text"`
	SecondaryText string `json:"secondaryText"`
}

type SlideText2 struct {
	base
	SlideText2Content
}

func (*SlideText2) Kind() Kind     { return KindSlideText2 }
func (s *SlideText2) content() any { return &s.SlideText2Content }
func (s *SlideText2) view() ItemView {
	return ItemView{Kind: KindSlideText2, Position: s.position, Title: s.Title, Text: s.Text, SecondaryText: s.SecondaryText}
}

type SlideTextMedia1Content struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	MediaURL string `json:"mediaUrl"`
}

type SlideTextMedia1 struct {
	base
	SlideTextMedia1Content
}

func (*SlideTextMedia1) Kind() Kind     { return KindSlideTextMedia1 }
func (s *SlideTextMedia1) content() any { return &s.SlideTextMedia1Content }
func (s *SlideTextMedia1) view() ItemView {
	return ItemView{Kind: KindSlideTextMedia1, Position: s.position, Title: s.Title, Text: s.Text, MediaURL: s.MediaURL}
}

type SlideTextMedia2Content struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	MediaURL string `json:"mediaUrl"`
	Caption  string `json:"caption"`
}

type SlideTextMedia2 struct {
	base
	SlideTextMedia2Content
}

func (*SlideTextMedia2) Kind() Kind     { return KindSlideTextMedia2 }
func (s *SlideTextMedia2) content() any { return &s.SlideTextMedia2Content }
func (s *SlideTextMedia2) view() ItemView {
	return ItemView{Kind: KindSlideTextMedia2, Position: s.position, Title: s.Title, Text: s.Text, MediaURL: s.MediaURL, Caption: s.Caption}
}

type SlideTitle1Content struct {
	Title string `json:"title"`
}

type SlideTitle1 struct {
	base
	SlideTitle1Content
}

func (*SlideTitle1) Kind() Kind     { return KindSlideTitle1 }
func (s *SlideTitle1) content() any { return &s.SlideTitle1Content }
func (s *SlideTitle1) view() ItemView {
	return ItemView{Kind: KindSlideTitle1, Position: s.position, Title: s.Title}
}

type SlideTitle2Content struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

type SlideTitle2 struct {
	base
	SlideTitle2Content
}

func (*SlideTitle2) Kind() Kind     { return KindSlideTitle2 }
func (s *SlideTitle2) content() any { return &s.SlideTitle2Content }
func (s *SlideTitle2) view() ItemView {
	return ItemView{Kind: KindSlideTitle2, Position: s.position, Title: s.Title, Subtitle: s.Subtitle}
}

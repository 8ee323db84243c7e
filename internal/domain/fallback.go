package domain

// fallbackQuotes is served whenever the quote API cannot be reached.
// Page i of a batch falls back to entries [i*pageSize, (i+1)*pageSize).
var fallbackQuotes = [...]Quote{
	{Text: "The greatest glory in living lies not in never falling, but in rising every time we fall.", Author: "Nelson Mandela"},
	{Text: "The way to get started is to quit talking and begin doing.", Author: "Walt Disney"},
	{Text: "Life is what happens when you're busy making other plans.", Author: "John Lennon"},
	{Text: "The future belongs to those who believe in the beauty of their dreams.", Author: "Eleanor Roosevelt"},
	{Text: "It is during our darkest moments that we must focus to see the light.", Author: "Aristotle"},
	{Text: "Whoever is happy will make others happy too.", Author: "Anne Frank"},
	{Text: "Do not go where the path may lead, go instead where there is no path and leave a trail.", Author: "Ralph Waldo Emerson"},
	{Text: "You will face many defeats in life, but never let yourself be defeated.", Author: "Maya Angelou"},
	{Text: "In the end, it's not the years in your life that count. It's the life in your years.", Author: "Abraham Lincoln"},
	{Text: "Never let the fear of striking out keep you from playing the game.", Author: "Babe Ruth"},
	{Text: "Life is either a daring adventure or nothing at all.", Author: "Helen Keller"},
	{Text: "Many of life's failures are people who did not realize how close they were to success when they gave up.", Author: "Thomas A. Edison"},
	{Text: "You have brains in your head. You have feet in your shoes. You can steer yourself any direction you choose.", Author: "Dr. Seuss"},
	{Text: "If life were predictable it would cease to be life, and be without flavor.", Author: "Eleanor Roosevelt"},
	{Text: "If you look at what you have in life, you'll always have more.", Author: "Oprah Winfrey"},
	{Text: "If you set your goals ridiculously high and it's a failure, you will fail above everyone else's success.", Author: "James Cameron"},
	{Text: "Life is not measured by the number of breaths we take, but by the moments that take our breath away.", Author: "Maya Angelou"},
	{Text: "If you want to live a happy life, tie it to a goal, not to people or things.", Author: "Albert Einstein"},
	{Text: "Your time is limited, so don't waste it living someone else's life.", Author: "Steve Jobs"},
	{Text: "The only impossible journey is the one you never begin.", Author: "Tony Robbins"},
	{Text: "Spread love everywhere you go. Let no one ever come to you without leaving happier.", Author: "Mother Teresa"},
	{Text: "When you reach the end of your rope, tie a knot in it and hang on.", Author: "Franklin D. Roosevelt"},
	{Text: "Always remember that you are absolutely unique. Just like everyone else.", Author: "Margaret Mead"},
	{Text: "Don't judge each day by the harvest you reap but by the seeds that you plant.", Author: "Robert Louis Stevenson"},
	{Text: "Tell me and I forget. Teach me and I remember. Involve me and I learn.", Author: "Benjamin Franklin"},
	{Text: "The best and most beautiful things in the world cannot be seen or even touched - they must be felt with the heart.", Author: "Helen Keller"},
	{Text: "It is always the simple that produces the marvelous.", Author: "Amelia Barr"},
	{Text: "Do one thing every day that scares you.", Author: "Eleanor Roosevelt"},
	{Text: "Well done is better than well said.", Author: "Benjamin Franklin"},
	{Text: "The best time to plant a tree was 20 years ago. The second best time is now.", Author: "Chinese Proverb"},
	{Text: "An unexamined life is not worth living.", Author: "Socrates"},
	{Text: "Eighty percent of success is showing up.", Author: "Woody Allen"},
	{Text: "I have not failed. I've just found 10,000 ways that won't work.", Author: "Thomas A. Edison"},
	{Text: "A person who never made a mistake never tried anything new.", Author: "Albert Einstein"},
	{Text: "What you do speaks so loudly that I cannot hear what you say.", Author: "Ralph Waldo Emerson"},
	{Text: "Believe you can and you're halfway there.", Author: "Theodore Roosevelt"},
	{Text: "It does not matter how slowly you go as long as you do not stop.", Author: "Confucius"},
	{Text: "Everything you've ever wanted is on the other side of fear.", Author: "George Addair"},
	{Text: "Success is not final, failure is not fatal: it is the courage to continue that counts.", Author: "Winston Churchill"},
	{Text: "Hardships often prepare ordinary people for an extraordinary destiny.", Author: "C.S. Lewis"},
	{Text: "Start where you are. Use what you have. Do what you can.", Author: "Arthur Ashe"},
	{Text: "Act as if what you do makes a difference. It does.", Author: "William James"},
	{Text: "Keep your face always toward the sunshine, and shadows will fall behind you.", Author: "Walt Whitman"},
	{Text: "Happiness is not something ready made. It comes from your own actions.", Author: "Dalai Lama"},
	{Text: "It always seems impossible until it's done.", Author: "Nelson Mandela"},
	{Text: "What lies behind us and what lies before us are tiny matters compared to what lies within us.", Author: "Ralph Waldo Emerson"},
	{Text: "The mind is everything. What you think you become.", Author: "Buddha"},
	{Text: "Strive not to be a success, but rather to be of value.", Author: "Albert Einstein"},
	{Text: "Two roads diverged in a wood, and I, I took the one less traveled by, and that has made all the difference.", Author: "Robert Frost"},
	{Text: "The only way to do great work is to love what you do.", Author: "Steve Jobs"},
	{Text: "You miss 100% of the shots you don't take.", Author: "Wayne Gretzky"},
	{Text: "Whether you think you can or you think you can't, you're right.", Author: "Henry Ford"},
	{Text: "I am not a product of my circumstances. I am a product of my decisions.", Author: "Stephen Covey"},
	{Text: "Dream big and dare to fail.", Author: "Norman Vaughan"},
	{Text: "Everything has beauty, but not everyone can see.", Author: "Confucius"},
	{Text: "Change your thoughts and you change your world.", Author: "Norman Vincent Peale"},
	{Text: "Nothing is impossible, the word itself says 'I'm possible'!", Author: "Audrey Hepburn"},
	{Text: "Quality is not an act, it is a habit.", Author: "Aristotle"},
	{Text: "With the new day comes new strength and new thoughts.", Author: "Eleanor Roosevelt"},
	{Text: "Simplicity is the ultimate sophistication.", Author: "Leonardo da Vinci"},
}

// FallbackSize is the number of entries in the static fallback table.
const FallbackSize = len(fallbackQuotes)

// FallbackQuotes returns a copy of the whole static fallback table.
func FallbackQuotes() Batch {
	return FallbackSlice(0, FallbackSize)
}

// FallbackSlice returns a copy of fallback entries [start, end), clamped to the table.
func FallbackSlice(start, end int) Batch {
	start = max(0, min(start, FallbackSize))
	end = max(start, min(end, FallbackSize))

	out := make(Batch, end-start)
	copy(out, fallbackQuotes[start:end])

	return out
}

package providers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExtract(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testReader() *ExtractReader {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return NewExtractReader(log)
}

func TestBoxScoresAppliesCutoff(t *testing.T) {
	path := writeExtract(t, "PlayerStatistics.csv",
		"firstName,lastName,playerteamName,opponentteamName,gameDate,numMinutes,points,reboundsTotal,assists,steals,blocks,turnovers,fieldGoalsMade,fieldGoalsAttempted,threePointersMade,freeThrowsMade,freeThrowsAttempted\n"+
			"LeBron,James,lakers,nuggets,2024-10-23,35,25,8,9,1,1,3,10,20,2,3,4\n"+
			"LeBron,James,lakers,suns,2024-04-01,30,20,6,7,1,0,2,8,15,1,3,3\n")

	cutoff := time.Date(2024, 10, 22, 0, 0, 0, 0, time.UTC)
	lines, err := testReader().BoxScores(path, cutoff)
	require.NoError(t, err)

	require.Len(t, lines, 1)
	assert.Equal(t, "LeBron James", lines[0].FullName())
	assert.Equal(t, "nuggets", lines[0].OpponentTeam)
	assert.Equal(t, 25.0, lines[0].Points)
}

func TestBoxScoresSchemaDriftIsFatal(t *testing.T) {
	path := writeExtract(t, "PlayerStatistics.csv",
		"firstName,lastName,gameDate\nLeBron,James,2024-10-23\n")

	_, err := testReader().BoxScores(path, time.Time{})

	assert.ErrorIs(t, err, ErrSchemaDrift)
}

func TestMasterListParsesRoleFlags(t *testing.T) {
	path := writeExtract(t, "Players.csv",
		"firstName,lastName,personId,guard,forward,center\n"+
			"LeBron,James,2544,false,true,false\n"+
			"Luka,Doncic,1629029,true,true,false\n")

	entries, err := testReader().MasterList(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "F", entries[0].Positions().Code())
	assert.Equal(t, "G-F", entries[1].Positions().Code())
}

func TestInjuriesFlipsNames(t *testing.T) {
	path := writeExtract(t, "injury_data.csv",
		"TEAM,PLAYER,STATUS,DATE\n"+
			"lakers,\"James, LeBron\",Out,2025-01-15\n"+
			"lakers,\"Davis, Anthony\",Questionable,2025-01-15\n")

	events, err := testReader().Injuries(path)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "LeBron James", events[0].PlayerName)
	assert.True(t, events[0].IsOut())
	assert.False(t, events[1].IsOut())
}

func TestScheduleReadsGameTimes(t *testing.T) {
	path := writeExtract(t, "LeagueSchedule.csv",
		"hometeamId,awayteamId,gameDateTimeEst\n"+
			"1610612747,1610612743,2025-04-13 15:30:00\n")

	games, err := testReader().Schedule(path)
	require.NoError(t, err)
	require.Len(t, games, 1)

	assert.Equal(t, 1610612747, games[0].HomeTeamID)
	assert.Equal(t, 1610612743, games[0].AwayTeamID)
	assert.Equal(t, 13, games[0].GameTimeEST.Day())
}

func TestTeamsMapping(t *testing.T) {
	path := writeExtract(t, "teams.json",
		`[{"teamId": 1610612747, "simpleName": "lakers"}, {"teamId": 1610612743, "simpleName": "nuggets"}]`)

	teams, err := testReader().Teams(path)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "lakers", teams[0].SimpleName)
}

func TestSimplifyPosition(t *testing.T) {
	assert.Equal(t, "G-F", SimplifyPosition("Guard-Forward").Code())
	assert.Equal(t, "C", SimplifyPosition("center").Code())
	assert.True(t, SimplifyPosition("Head Coach").IsEmpty())
}

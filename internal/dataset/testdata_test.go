package dataset

const testHeader = "CRASH DATE,CRASH TIME,BOROUGH,ZIP CODE,LATITUDE,LONGITUDE,LOCATION,ON STREET NAME,CROSS STREET NAME,OFF STREET NAME," +
	"NUMBER OF PERSONS INJURED,NUMBER OF PERSONS KILLED,NUMBER OF PEDESTRIANS INJURED,NUMBER OF PEDESTRIANS KILLED," +
	"NUMBER OF CYCLIST INJURED,NUMBER OF CYCLIST KILLED,NUMBER OF MOTORIST INJURED,NUMBER OF MOTORIST KILLED," +
	"CONTRIBUTING FACTOR VEHICLE 1,COLLISION_ID,VEHICLE TYPE CODE 1\n"

// threeRows holds two located collisions and one with a blank longitude.
const threeRows = testHeader +
	`09/11/2021,2:39,,,40.667202,-73.8665,"(40.667202, -73.8665)",WHITESTONE EXPRESSWAY,20 AVENUE,,2,0,0,0,0,0,2,0,Aggressive Driving/Road Rage,4455765,Sedan` + "\n" +
	`03/26/2022,11:45,BROOKLYN,11208,40.683304,-73.917274,"(40.683304, -73.917274)",,,1211      LORING AVENUE,1,0,1,0,0,0,0,0,Pavement Slippery,4513547,Sedan` + "\n" +
	`06/29/2022,6:55,,,40.732,,,THROGS NECK BRIDGE,,,0,0,0,0,0,0,0,0,Following Too Closely,4541903,Station Wagon/Sport Utility Vehicle` + "\n"
